package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/issue-analyzer/internal/mcp/tools/types"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

type Analyzer interface {
	Analyze(ctx context.Context, is tracker.Issue) (pipeline.Result, error)
}

// AnalyzeIssueHandler classifies and reviews an issue. It never writes to the tracker.
type AnalyzeIssueHandler struct {
	Service     Analyzer
	Source      IssueSource
	DefaultRepo string
}

func (h *AnalyzeIssueHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	is, err := resolveIssue(ctx, req.GetArguments(), h.DefaultRepo, h.Source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.Service.Analyze(ctx, is)
	if err != nil {
		reason, category := pipeline.GetFailureDetails(err)
		return mcp.NewToolResultError(string(category) + ": " + reason), nil
	}
	return jsonResult(types.AnalysisResult{
		Issue: types.IssueSummary{
			Repository: is.Ref.Repository(),
			Number:     is.Ref.Number,
			Title:      is.Title,
			URL:        is.URL,
		},
		IssueType:      res.Analysis.IssueType,
		Priority:       res.Analysis.Priority,
		Complexity:     res.Analysis.Complexity,
		ReviewFeedback: res.Analysis.ReviewFeedback,
		NextSteps:      res.Analysis.NextSteps,
		Labels:         res.Labels,
		Comment:        res.Comment,
	})
}
