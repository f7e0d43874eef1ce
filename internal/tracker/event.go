package tracker

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/roivaz/issue-analyzer/internal/config"
)

// ReadEvent loads the issue from a GitHub Actions event payload. The
// repository comes from the payload when present, otherwise from fallbackRepo.
func ReadEvent(path, fallbackRepo string) (Issue, error) {
	if path == "" {
		return Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: "is not set"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: fmt.Sprintf("cannot read event payload: %v", err)}
	}
	return parseEvent(data, fallbackRepo)
}

func parseEvent(data []byte, fallbackRepo string) (Issue, error) {
	if !gjson.ValidBytes(data) {
		return Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: "event payload is not valid JSON"}
	}
	issue := gjson.GetBytes(data, "issue")
	if !issue.Exists() {
		return Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: "event payload has no issue"}
	}
	for _, key := range []string{"number", "title", "body"} {
		if !issue.Get(key).Exists() {
			return Issue{}, &config.Error{Key: config.KeyGitHubEventPath, Reason: "event issue is missing " + key}
		}
	}

	repository := gjson.GetBytes(data, "repository.full_name").String()
	if repository == "" {
		repository = fallbackRepo
	}
	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return Issue{}, &config.Error{Key: config.KeyGitHubRepository, Reason: err.Error()}
	}

	is := Issue{
		Ref:   IssueRef{Owner: owner, Repo: repo, Number: int(issue.Get("number").Int())},
		Title: issue.Get("title").String(),
		Body:  issue.Get("body").String(),
		State: issue.Get("state").String(),
		URL:   issue.Get("html_url").String(),
	}
	if created := issue.Get("created_at"); created.Exists() {
		is.CreatedAt = created.Time()
	}
	is.IsPullRequest = issue.Get("pull_request").Exists()
	return is, nil
}
