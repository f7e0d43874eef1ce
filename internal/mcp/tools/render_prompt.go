package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/issue-analyzer/internal/mcp/tools/types"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

type PromptRenderer interface {
	BuildPrompts(is tracker.Issue) (system, user string, err error)
}

type RenderPromptHandler struct {
	Service     PromptRenderer
	Source      IssueSource
	DefaultRepo string
}

func (h *RenderPromptHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	is, err := resolveIssue(ctx, req.GetArguments(), h.DefaultRepo, h.Source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	system, user, err := h.Service.BuildPrompts(is)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(types.RenderedPrompt{System: system, User: user})
}
