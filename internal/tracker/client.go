package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const publicAPIURL = "https://api.github.com/"

// NewGitHubClient returns an authenticated client. apiURL selects a GitHub
// Enterprise endpoint (the value of GITHUB_API_URL); empty means github.com.
func NewGitHubClient(token, apiURL string) (*github.Client, error) {
	var hc *http.Client
	if token == "" {
		hc = &http.Client{Timeout: 30 * time.Second}
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
		hc.Timeout = 30 * time.Second
	}
	client := github.NewClient(hc)

	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" || strings.TrimSuffix(apiURL, "/")+"/" == publicAPIURL {
		return client, nil
	}
	base, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse github api url %q: %w", apiURL, err)
	}
	client.BaseURL = base
	return client, nil
}

// ParseRepository accepts "owner/repo" or any GitHub URL form.
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("empty repository identifier")
	}
	if !strings.Contains(s, ":") && strings.Count(s, "/") == 1 {
		parts := strings.SplitN(s, "/", 2)
		if parts[0] != "" && parts[1] != "" {
			return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
		}
	}
	info, err := vcsurl.Parse(s)
	if err != nil {
		return "", "", fmt.Errorf("parse repository %q: %w", s, err)
	}
	if info.Username == "" || info.Name == "" {
		return "", "", fmt.Errorf("repository %q has no owner/name", s)
	}
	return info.Username, info.Name, nil
}

// IssueRef identifies an issue in a repository.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// Repository is "owner/repo", or empty when the issue is not tied to one.
func (r IssueRef) Repository() string {
	if r.Owner == "" && r.Repo == "" {
		return ""
	}
	return r.Owner + "/" + r.Repo
}

type Issue struct {
	Ref           IssueRef
	Title         string
	Body          string
	State         string
	URL           string
	CreatedAt     time.Time
	ClosedAt      *time.Time
	IsPullRequest bool
}

// FixtureIssue is the canned issue used in test mode when no real issue is available.
func FixtureIssue() Issue {
	return Issue{
		Ref:   IssueRef{Owner: "test_owner", Repo: "test_repo", Number: 1},
		Title: "Test Issue",
		Body:  "This is a test issue",
		State: "open",
	}
}

func issueFromGitHub(owner, repo string, gi *github.Issue) Issue {
	is := Issue{
		Ref:           IssueRef{Owner: owner, Repo: repo, Number: gi.GetNumber()},
		Title:         gi.GetTitle(),
		Body:          gi.GetBody(),
		State:         gi.GetState(),
		URL:           gi.GetHTMLURL(),
		CreatedAt:     gi.GetCreatedAt().Time,
		IsPullRequest: gi.IsPullRequest(),
	}
	if gi.ClosedAt != nil {
		closed := gi.GetClosedAt().Time
		is.ClosedAt = &closed
	}
	return is
}
