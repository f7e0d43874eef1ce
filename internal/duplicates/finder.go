package duplicates

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/prompt"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

var tracer = otel.Tracer("issue-analyzer/duplicates")

// embedTokenLimit caps each issue text before embedding.
const embedTokenLimit = 2000

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type Match struct {
	Issue tracker.Issue `json:"-"`
	Score float64       `json:"score"`
}

type Finder struct {
	embedder  Embedder
	threshold float64
	log       logging.Logger
}

func NewFinder(embedder Embedder, threshold float64, log logging.Logger) *Finder {
	return &Finder{embedder: embedder, threshold: threshold, log: log.WithName("duplicates")}
}

// Find scores candidates against target and returns those at or above the
// threshold, best first. The target itself and pull requests are skipped.
func (f *Finder) Find(ctx context.Context, target tracker.Issue, candidates []tracker.Issue) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "duplicates.find")
	defer span.End()

	var pool []tracker.Issue
	for _, c := range candidates {
		if c.IsPullRequest || c.Ref == target.Ref {
			continue
		}
		pool = append(pool, c)
	}
	span.SetAttributes(attribute.Int("duplicates.candidates", len(pool)))
	if len(pool) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(pool)+1)
	texts = append(texts, issueText(target))
	for _, c := range pool {
		texts = append(texts, issueText(c))
	}
	vectors, err := f.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed issues: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed issues: expected %d vectors, got %d", len(texts), len(vectors))
	}

	var matches []Match
	for i, c := range pool {
		score := CosineSimilarity(vectors[0], vectors[i+1])
		f.log.Debug("scored candidate", "issue", c.Ref.String(), "score", score)
		if score >= f.threshold {
			matches = append(matches, Match{Issue: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Issue.Ref.Number < matches[j].Issue.Ref.Number
	})
	span.SetAttributes(attribute.Int("duplicates.matches", len(matches)))
	return matches, nil
}

func issueText(is tracker.Issue) string {
	return prompt.Clip(is.Title+"\n\n"+is.Body, embedTokenLimit)
}

// CosineSimilarity returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
