package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/issue-analyzer/internal/mcp/tools/types"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

// DuplicateChecker must be configured for dry-run so the tool never posts.
type DuplicateChecker interface {
	CheckDuplicates(ctx context.Context, is tracker.Issue) (pipeline.DuplicateReport, error)
}

type FindSimilarIssuesHandler struct {
	Service     DuplicateChecker
	Source      IssueSource
	DefaultRepo string
}

func (h *FindSimilarIssuesHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	if _, ok := args["issue_number"]; !ok {
		return mcp.NewToolResultError("issue_number parameter is required"), nil
	}
	is, err := resolveIssue(ctx, args, h.DefaultRepo, h.Source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := h.Service.CheckDuplicates(ctx, is)
	if err != nil {
		reason, category := pipeline.GetFailureDetails(err)
		return mcp.NewToolResultError(string(category) + ": " + reason), nil
	}

	results := make([]types.SimilarIssue, 0, len(report.Matches))
	for _, m := range report.Matches {
		results = append(results, types.SimilarIssue{
			Number:     m.Issue.Ref.Number,
			Title:      m.Issue.Title,
			State:      m.Issue.State,
			URL:        m.Issue.URL,
			Similarity: m.Score,
		})
	}
	response := struct {
		Issue   types.IssueSummary   `json:"issue"`
		Results []types.SimilarIssue `json:"results"`
		Total   int                  `json:"total_found"`
	}{
		Issue:   types.IssueSummary{Repository: is.Ref.Repository(), Number: is.Ref.Number, Title: is.Title},
		Results: results,
		Total:   len(results),
	}
	return jsonResult(response)
}
