package tracker

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/roivaz/issue-analyzer/internal/logging"
)

// maxListPages bounds each issue listing so large repositories stay cheap.
const maxListPages = 10

type IssuesService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
	ListLabels(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Label, *github.Response, error)
	CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, *github.Response, error)
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

// Dispatcher performs the GitHub reads and writes of an analysis run. Every
// call is a single attempt.
type Dispatcher struct {
	issues IssuesService
	users  UsersService
	log    logging.Logger
}

func NewDispatcher(client *github.Client, log logging.Logger) *Dispatcher {
	return NewDispatcherWithServices(client.Issues, client.Users, log)
}

func NewDispatcherWithServices(issues IssuesService, users UsersService, log logging.Logger) *Dispatcher {
	return &Dispatcher{issues: issues, users: users, log: log.WithName("tracker")}
}

func (d *Dispatcher) GetIssue(ctx context.Context, ref IssueRef) (Issue, error) {
	gi, _, err := d.issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return Issue{}, wrapErr("get issue "+ref.String(), err)
	}
	return issueFromGitHub(ref.Owner, ref.Repo, gi), nil
}

func (d *Dispatcher) PostComment(ctx context.Context, ref IssueRef, body string) error {
	c, _, err := d.issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &github.IssueComment{Body: github.String(body)})
	if err != nil {
		return wrapErr("post comment on "+ref.String(), err)
	}
	d.log.Info("posted comment", "issue", ref.String(), "url", c.GetHTMLURL())
	return nil
}

func (d *Dispatcher) ApplyLabels(ctx context.Context, ref IssueRef, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	if _, _, err := d.issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels); err != nil {
		return wrapErr("apply labels to "+ref.String(), err)
	}
	d.log.Info("applied labels", "issue", ref.String(), "labels", labels)
	return nil
}

// EnsureLabels creates every label in want that the repository lacks and
// returns the names it created.
func (d *Dispatcher) EnsureLabels(ctx context.Context, owner, repo string, want []string, color string) ([]string, error) {
	existing := map[string]bool{}
	opts := &github.ListOptions{PerPage: 100}
	for page := 0; page < maxListPages; page++ {
		labels, resp, err := d.issues.ListLabels(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapErr("list labels of "+owner+"/"+repo, err)
		}
		for _, l := range labels {
			existing[l.GetName()] = true
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var created []string
	for _, name := range want {
		if existing[name] {
			continue
		}
		label := &github.Label{Name: github.String(name), Color: github.String(color)}
		if _, resp, err := d.issues.CreateLabel(ctx, owner, repo, label); err != nil {
			// another run may have created it in the meantime
			if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
				continue
			}
			return created, wrapErr("create label "+name, err)
		}
		created = append(created, name)
		existing[name] = true
	}
	if len(created) > 0 {
		d.log.Info("created missing labels", "repository", owner+"/"+repo, "labels", created)
	}
	return created, nil
}

// ListRecentIssues returns the open issues plus those closed since the given
// time. Pull requests are left out.
func (d *Dispatcher) ListRecentIssues(ctx context.Context, owner, repo string, closedSince time.Time) ([]Issue, error) {
	open, err := d.listIssues(ctx, owner, repo, &github.IssueListByRepoOptions{State: "open"})
	if err != nil {
		return nil, err
	}
	closed, err := d.listIssues(ctx, owner, repo, &github.IssueListByRepoOptions{State: "closed", Since: closedSince})
	if err != nil {
		return nil, err
	}
	out := open
	for _, is := range closed {
		if is.ClosedAt != nil && !is.ClosedAt.Before(closedSince) {
			out = append(out, is)
		}
	}
	d.log.Debug("listed recent issues", "repository", owner+"/"+repo, "open", len(open), "total", len(out))
	return out, nil
}

func (d *Dispatcher) listIssues(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]Issue, error) {
	opts.ListOptions = github.ListOptions{PerPage: 100}
	var out []Issue
	for page := 0; page < maxListPages; page++ {
		issues, resp, err := d.issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, wrapErr("list "+opts.State+" issues of "+owner+"/"+repo, err)
		}
		for _, gi := range issues {
			if gi.IsPullRequest() {
				continue
			}
			out = append(out, issueFromGitHub(owner, repo, gi))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return out, nil
}

// AuthenticatedUser returns the login of the token owner.
func (d *Dispatcher) AuthenticatedUser(ctx context.Context) (string, error) {
	u, _, err := d.users.Get(ctx, "")
	if err != nil {
		return "", wrapErr("get authenticated user", err)
	}
	return u.GetLogin(), nil
}
