package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/duplicates"
	"github.com/roivaz/issue-analyzer/internal/prompt"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

func analysisCommentContext(a analysis.IssueAnalysis, at time.Time) prompt.Context {
	complexity := a.Complexity
	if complexity == "" {
		complexity = "Not assessed"
	}
	return prompt.Context{
		"issue_type":      a.IssueType,
		"priority":        a.Priority,
		"complexity":      complexity,
		"review_feedback": strings.TrimSpace(a.ReviewFeedback),
		"next_steps":      bulletList(a.NextSteps, "No specific next steps suggested."),
		"analyzed_at":     at.UTC().Format(timestampLayout),
	}
}

func duplicatesCommentContext(matches []duplicates.Match) prompt.Context {
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("#%d %s (similarity %.2f)", m.Issue.Ref.Number, m.Issue.Title, m.Score))
	}
	return prompt.Context{"duplicates": bulletList(lines, "")}
}

func bulletList(items []string, empty string) string {
	var b strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	if b.Len() == 0 && empty != "" {
		return "- " + empty
	}
	return b.String()
}
