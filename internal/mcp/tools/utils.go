package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/issue-analyzer/internal/tracker"
)

// IssueSource fetches issues from the tracker.
type IssueSource interface {
	GetIssue(ctx context.Context, ref tracker.IssueRef) (tracker.Issue, error)
}

func parseIntArgument(name string, value any) (int, error) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return 0, fmt.Errorf("%s must be positive", name)
		}
		return int(v), nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("%s must be positive", name)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be provided", name)
	}
}

// resolveIssue builds the issue a tool works on: fetched by issue_number
// when given, otherwise assembled from the title and body arguments. A
// repository is only required in the first case.
func resolveIssue(ctx context.Context, args map[string]any, defaultRepo string, source IssueSource) (tracker.Issue, error) {
	repository := defaultRepo
	if v, ok := args["repository"].(string); ok && strings.TrimSpace(v) != "" {
		repository = v
	}
	title, _ := args["title"].(string)
	body, _ := args["body"].(string)

	if raw, ok := args["issue_number"]; ok {
		number, err := parseIntArgument("issue_number", raw)
		if err != nil {
			return tracker.Issue{}, err
		}
		owner, repo, err := tracker.ParseRepository(repository)
		if err != nil {
			return tracker.Issue{}, err
		}
		ref := tracker.IssueRef{Owner: owner, Repo: repo, Number: number}
		if title != "" || source == nil {
			return tracker.Issue{Ref: ref, Title: title, Body: body}, nil
		}
		return source.GetIssue(ctx, ref)
	}

	if strings.TrimSpace(title) == "" {
		return tracker.Issue{}, fmt.Errorf("either issue_number or title is required")
	}
	is := tracker.Issue{Title: title, Body: body}
	if strings.TrimSpace(repository) != "" {
		owner, repo, err := tracker.ParseRepository(repository)
		if err != nil {
			return tracker.Issue{}, err
		}
		is.Ref = tracker.IssueRef{Owner: owner, Repo: repo}
	}
	return is, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
