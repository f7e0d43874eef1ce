package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

var issueArguments = []mcp.ToolOption{
	mcp.WithNumber("issue_number",
		mcp.Description("Issue number to fetch from the repository"),
	),
	mcp.WithString("title",
		mcp.Description("Issue title, used instead of fetching when given"),
	),
	mcp.WithString("body",
		mcp.Description("Issue body (markdown)"),
	),
	mcp.WithString("repository",
		mcp.Description("owner/repo or GitHub URL; defaults to GITHUB_REPOSITORY"),
	),
}

func toolDefinitions() map[string]mcp.Tool {
	withIssue := func(name, description string) mcp.Tool {
		opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, issueArguments...)
		return mcp.NewTool(name, opts...)
	}
	return map[string]mcp.Tool{
		"analyze_issue": withIssue("analyze_issue",
			"Classify a GitHub issue (type, priority, complexity) and review it with the configured LLM. Returns the analysis, the labels and the comment that would be posted; nothing is written to GitHub."),
		"render_prompt": withIssue("render_prompt",
			"Render the system and user prompts that analyze_issue would send to the model."),
		"find_similar_issues": withIssue("find_similar_issues",
			"Find open or recently closed issues that look like duplicates of the given issue, using embedding similarity. Requires issue_number."),
	}
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"issue-analyzer",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	defs := toolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := defs[name]
		if !ok {
			continue
		}
		mcpServer.AddTool(tool, adapter.ToolAdapter)
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCP)
}
