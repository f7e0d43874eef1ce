package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/config"
	"github.com/roivaz/issue-analyzer/internal/duplicates"
	"github.com/roivaz/issue-analyzer/internal/llm"
	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
	"github.com/roivaz/issue-analyzer/internal/prompt"
	"github.com/roivaz/issue-analyzer/internal/telemetry"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

var _ pipeline.Tracker = (*tracker.Dispatcher)(nil)

// app holds what every subcommand builds from settings.
type app struct {
	settings config.Settings
	log      logging.Logger
	shutdown func(context.Context) error
}

func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{
		settings: settings,
		log:      logging.New(logging.NewZap(settings.LogLevel).WithName("analyze-issue")),
		shutdown: func(context.Context) error { return nil },
	}
	if settings.Trace {
		shutdown, err := telemetry.InitTracer("issue-analyzer", os.Stderr)
		if err != nil {
			return nil, err
		}
		a.shutdown = shutdown
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.log.Error(err, "flush traces")
	}
}

func (a *app) taxonomy() analysis.Taxonomy {
	return analysis.Taxonomy{
		IssueTypes:       a.settings.Taxonomy.IssueTypes,
		PriorityLevels:   a.settings.Taxonomy.PriorityLevels,
		ComplexityLevels: a.settings.Taxonomy.ComplexityLevels,
	}
}

func (a *app) llmConfig() llm.Config {
	s := a.settings.LLM
	return llm.Config{
		Provider:       s.Provider,
		Model:          s.Model,
		BaseURL:        s.BaseURL,
		APIKey:         s.APIKey,
		OllamaURL:      s.OllamaURL,
		EmbeddingModel: s.EmbeddingModel,
		CallTimeout:    s.CallTimeout,
	}
}

func (a *app) modelClient() (*llm.Client, error) {
	if err := a.settings.RequireModelCredential(); err != nil {
		return nil, err
	}
	return llm.New(a.llmConfig(), a.log)
}

func (a *app) finder(client *llm.Client) (*duplicates.Finder, error) {
	embedder, err := llm.NewEmbedder(client)
	if err != nil {
		return nil, err
	}
	return duplicates.NewFinder(embedder, a.settings.Duplicates.Threshold, a.log), nil
}

// dispatcher returns nil without error when GitHub is not configured and
// required is false.
func (a *app) dispatcher(required bool) (*tracker.Dispatcher, error) {
	if err := a.settings.RequireGitHub(); err != nil {
		if required {
			return nil, err
		}
		return nil, nil
	}
	client, err := tracker.NewGitHubClient(a.settings.GitHub.Token, a.settings.GitHub.APIURL)
	if err != nil {
		return nil, &config.Error{Key: config.KeyGitHubAPIURL, Reason: err.Error()}
	}
	return tracker.NewDispatcher(client, a.log), nil
}

func (a *app) pipeline(model pipeline.Completer, d *tracker.Dispatcher, dryRun bool) (*pipeline.Pipeline, error) {
	store, err := prompt.NewStore(a.settings.Prompts.TemplateDir)
	if err != nil {
		return nil, &config.Error{Key: config.KeyTemplateDir, Reason: err.Error()}
	}
	cfg := pipeline.Config{
		Options: llm.Options{
			Model:          a.settings.LLM.Model,
			Temperature:    a.settings.LLM.Temperature,
			MaxTokens:      a.settings.LLM.MaxTokens,
			ResponseFormat: llm.ResponseFormat(a.settings.LLM.ResponseFormat),
		},
		Taxonomy:      a.taxonomy(),
		MaxBodyTokens: a.settings.Prompts.MaxBodyTokens,
		LabelColor:    a.settings.GitHub.LabelColor,
		EnsureLabels:  a.settings.GitHub.EnsureLabels,
		LookbackDays:  a.settings.Duplicates.LookbackDays,
		DryRun:        dryRun,
	}
	var tr pipeline.Tracker
	if d != nil {
		tr = d
	}
	p, err := pipeline.New(store, model, tr, cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("build pipeline (templates: %s): %w", templateSource(a.settings.Prompts.TemplateDir), err)
	}
	return p, nil
}

func templateSource(dir string) string {
	if dir == "" {
		return "built-in set"
	}
	return dir
}

// resolveIssue picks the issue to work on: --issue N from the API, else the
// Actions event payload, else the fixture issue in test mode.
func (a *app) resolveIssue(ctx context.Context, number int, testMode bool, d *tracker.Dispatcher) (tracker.Issue, error) {
	gh := a.settings.GitHub
	switch {
	case number > 0:
		if d == nil {
			if err := a.settings.RequireGitHub(); err != nil {
				return tracker.Issue{}, err
			}
			return tracker.Issue{}, &config.Error{Key: config.KeyGitHubToken, Reason: "is required to fetch issues"}
		}
		owner, repo, err := tracker.ParseRepository(gh.Repository)
		if err != nil {
			return tracker.Issue{}, &config.Error{Key: config.KeyGitHubRepository, Reason: err.Error()}
		}
		return d.GetIssue(ctx, tracker.IssueRef{Owner: owner, Repo: repo, Number: number})
	case gh.EventPath != "":
		return tracker.ReadEvent(gh.EventPath, gh.Repository)
	case testMode:
		a.log.Info("no event payload or issue number, using the test fixture issue")
		return tracker.FixtureIssue(), nil
	default:
		return tracker.Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: "is not set; pass --issue N or --test"}
	}
}
