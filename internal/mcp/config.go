package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/issue-analyzer/internal/duplicates"
	"github.com/roivaz/issue-analyzer/internal/mcp/tools"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
}

// Deps are the components the tools run on. Pipeline must be built with
// DryRun set. Source and Finder may be nil, which disables fetching issues by
// number and find_similar_issues respectively.
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Source      tools.IssueSource
	Finder      *duplicates.Finder
	DefaultRepo string
}

func DefaultConfig(deps Deps) Config {
	adapters := map[string]ToolAdapter{
		"analyze_issue": &tools.AnalyzeIssueHandler{Service: deps.Pipeline, Source: deps.Source, DefaultRepo: deps.DefaultRepo},
		"render_prompt": &tools.RenderPromptHandler{Service: deps.Pipeline, Source: deps.Source, DefaultRepo: deps.DefaultRepo},
	}
	if deps.Finder != nil && deps.Source != nil {
		adapters["find_similar_issues"] = &tools.FindSimilarIssuesHandler{
			Service:     duplicateService{pipeline: deps.Pipeline, finder: deps.Finder},
			Source:      deps.Source,
			DefaultRepo: deps.DefaultRepo,
		}
	}
	return Config{
		ToolAdapters: adapters,
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath("/mcp/jsonrpc"),
			server.WithStateLess(true),
		},
	}
}

type duplicateService struct {
	pipeline *pipeline.Pipeline
	finder   *duplicates.Finder
}

func (s duplicateService) CheckDuplicates(ctx context.Context, is tracker.Issue) (pipeline.DuplicateReport, error) {
	return s.pipeline.CheckDuplicates(ctx, is, s.finder)
}
