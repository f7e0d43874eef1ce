package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/duplicates"
	"github.com/roivaz/issue-analyzer/internal/llm"
	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/prompt"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

var tracer = otel.Tracer("issue-analyzer/pipeline")

type Completer interface {
	Complete(ctx context.Context, system, user string, opts llm.Options) (llm.Response, error)
}

// Tracker is the subset of tracker.Dispatcher the pipeline writes through.
type Tracker interface {
	PostComment(ctx context.Context, ref tracker.IssueRef, body string) error
	ApplyLabels(ctx context.Context, ref tracker.IssueRef, labels []string) error
	EnsureLabels(ctx context.Context, owner, repo string, want []string, color string) ([]string, error)
	ListRecentIssues(ctx context.Context, owner, repo string, closedSince time.Time) ([]tracker.Issue, error)
}

type Config struct {
	Options       llm.Options
	Taxonomy      analysis.Taxonomy
	MaxBodyTokens int
	LabelColor    string
	EnsureLabels  bool
	LookbackDays  int
	// DryRun renders everything but performs no tracker writes.
	DryRun bool
}

// Result is the outcome of one analysis run.
type Result struct {
	Issue    tracker.Issue          `json:"-"`
	Analysis analysis.IssueAnalysis `json:"analysis"`
	Labels   []string               `json:"labels"`
	Comment  string                 `json:"comment"`
	Posted   bool                   `json:"posted"`
}

type Pipeline struct {
	templates map[string]prompt.Template
	model     Completer
	tracker   Tracker
	cfg       Config
	log       logging.Logger
	now       func() time.Time
}

// New wires a pipeline. All templates are loaded here and every placeholder
// they use is checked against the context the pipeline provides for them, so
// template and option problems surface before any network call. tr may be
// nil when cfg.DryRun is set; model may be nil when only prompts are rendered.
func New(store *prompt.Store, model Completer, tr Tracker, cfg Config, log logging.Logger) (*Pipeline, error) {
	if model != nil {
		if err := cfg.Options.Validate(); err != nil {
			return nil, err
		}
	}
	p := &Pipeline{
		model:   model,
		tracker: tr,
		cfg:     cfg,
		log:     log.WithName("pipeline"),
		now:     time.Now,
	}

	contexts := p.templateContexts()
	names := make([]string, 0, len(contexts))
	for name := range contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	templates, err := store.LoadAll(names...)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, err := prompt.Render(templates[name], contexts[name]); err != nil {
			return nil, err
		}
	}
	p.templates = templates
	return p, nil
}

// templateContexts returns, per template, a context with every key the
// pipeline fills for it.
func (p *Pipeline) templateContexts() map[string]prompt.Context {
	issueCtx := p.PromptContext(tracker.Issue{})
	return map[string]prompt.Context{
		prompt.AnalyzeIssueSystem: issueCtx,
		prompt.AnalyzeIssueUser:   issueCtx,
		prompt.AnalysisComment:    analysisCommentContext(analysis.IssueAnalysis{}, time.Time{}),
		prompt.DuplicatesComment:  duplicatesCommentContext(nil),
	}
}

func (p *Pipeline) render(name string, ctx prompt.Context) (string, error) {
	t, ok := p.templates[name]
	if !ok {
		return "", &prompt.NotFoundError{Name: name, Err: fs.ErrNotExist}
	}
	return prompt.Render(t, ctx)
}

// WithClock replaces the clock used for comment timestamps.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// PromptContext is the placeholder context for the issue analysis templates.
func (p *Pipeline) PromptContext(is tracker.Issue) prompt.Context {
	ctx := prompt.Context{
		"issue_title":  is.Title,
		"issue_body":   prompt.Clip(is.Body, p.cfg.MaxBodyTokens),
		"issue_number": strconv.Itoa(is.Ref.Number),
		"repository":   is.Ref.Repository(),
	}
	for k, v := range p.cfg.Taxonomy.PromptValues() {
		ctx[k] = v
	}
	return ctx
}

// BuildPrompts renders the system and user prompts for an issue.
func (p *Pipeline) BuildPrompts(is tracker.Issue) (system, user string, err error) {
	pctx := p.PromptContext(is)
	system, err = p.render(prompt.AnalyzeIssueSystem, pctx)
	if err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}
	user, err = p.render(prompt.AnalyzeIssueUser, pctx)
	if err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}
	return system, user, nil
}

// Analyze runs the prompt, model and parse stages and renders the comment. It
// has no side effects on the tracker.
func (p *Pipeline) Analyze(ctx context.Context, is tracker.Issue) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.analyze", trace.WithAttributes(attribute.String("issue", is.Ref.String())))
	defer span.End()

	if err := p.cfg.Options.Validate(); err != nil {
		return Result{}, fail(span, err)
	}
	system, user, err := p.BuildPrompts(is)
	if err != nil {
		return Result{}, fail(span, err)
	}

	log := p.log.WithValues("issue", is.Ref.String())
	log.Info("requesting analysis", "model", p.cfg.Options.Model)
	resp, err := p.model.Complete(ctx, system, user, p.cfg.Options)
	if err != nil {
		return Result{}, fail(span, fmt.Errorf("model call: %w", err))
	}
	log.Debug("model responded", "stopReason", resp.StopReason, "chars", len(resp.Text))

	rec, err := analysis.Parse(resp.Text, p.cfg.Taxonomy.IssueSchema())
	if err != nil {
		log.Debug("unparseable model output", "raw", resp.Text)
		return Result{}, fail(span, fmt.Errorf("parse model output: %w", err))
	}
	a := analysis.FromRecord(rec)

	comment, err := p.render(prompt.AnalysisComment, analysisCommentContext(a, p.now()))
	if err != nil {
		return Result{}, fail(span, fmt.Errorf("render comment: %w", err))
	}

	span.SetAttributes(
		attribute.String("analysis.issue_type", a.IssueType),
		attribute.String("analysis.priority", a.Priority),
	)
	return Result{Issue: is, Analysis: a, Labels: a.Labels(), Comment: comment}, nil
}

// Run analyzes the issue and, unless in dry-run mode, applies labels and then
// posts the comment. The first failure stops the run.
func (p *Pipeline) Run(ctx context.Context, is tracker.Issue) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	res, err := p.Analyze(ctx, is)
	if err != nil {
		return Result{}, err
	}
	log := p.log.WithValues("issue", is.Ref.String())
	if p.cfg.DryRun {
		log.Info("dry run, skipping labels and comment", "labels", res.Labels)
		return res, nil
	}
	if p.tracker == nil {
		return res, fail(span, fmt.Errorf("no issue tracker configured"))
	}

	if p.cfg.EnsureLabels {
		if _, err := p.tracker.EnsureLabels(ctx, is.Ref.Owner, is.Ref.Repo, p.cfg.Taxonomy.AllLabels(), p.cfg.LabelColor); err != nil {
			return res, fail(span, fmt.Errorf("ensure labels: %w", err))
		}
	}
	if err := p.tracker.ApplyLabels(ctx, is.Ref, res.Labels); err != nil {
		return res, fail(span, fmt.Errorf("apply labels: %w", err))
	}
	if err := p.tracker.PostComment(ctx, is.Ref, res.Comment); err != nil {
		return res, fail(span, fmt.Errorf("post comment: %w", err))
	}
	res.Posted = true
	log.Info("issue analyzed", "type", res.Analysis.IssueType, "priority", res.Analysis.Priority)
	return res, nil
}

// DuplicateReport is the outcome of a duplicate check.
type DuplicateReport struct {
	Matches []duplicates.Match `json:"matches"`
	Comment string             `json:"comment,omitempty"`
	Posted  bool               `json:"posted"`
}

// CheckDuplicates compares the issue with recent issues of its repository
// and posts a comment listing the likely duplicates, unless in dry-run mode.
func (p *Pipeline) CheckDuplicates(ctx context.Context, is tracker.Issue, finder *duplicates.Finder) (DuplicateReport, error) {
	ctx, span := tracer.Start(ctx, "pipeline.duplicates", trace.WithAttributes(attribute.String("issue", is.Ref.String())))
	defer span.End()

	if p.tracker == nil {
		return DuplicateReport{}, fail(span, fmt.Errorf("no issue tracker configured"))
	}
	since := p.now().AddDate(0, 0, -p.cfg.LookbackDays)
	candidates, err := p.tracker.ListRecentIssues(ctx, is.Ref.Owner, is.Ref.Repo, since)
	if err != nil {
		return DuplicateReport{}, fail(span, fmt.Errorf("list issues: %w", err))
	}
	matches, err := finder.Find(ctx, is, candidates)
	if err != nil {
		return DuplicateReport{}, fail(span, err)
	}
	report := DuplicateReport{Matches: matches}
	if len(matches) == 0 {
		p.log.Info("no likely duplicates", "issue", is.Ref.String(), "candidates", len(candidates))
		return report, nil
	}

	report.Comment, err = p.render(prompt.DuplicatesComment, duplicatesCommentContext(matches))
	if err != nil {
		return report, fail(span, fmt.Errorf("render duplicates comment: %w", err))
	}
	if p.cfg.DryRun {
		return report, nil
	}
	if err := p.tracker.PostComment(ctx, is.Ref, report.Comment); err != nil {
		return report, fail(span, fmt.Errorf("post duplicates comment: %w", err))
	}
	report.Posted = true
	return report, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(Classify(err)))
	return err
}
