package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/duplicates"
	"github.com/roivaz/issue-analyzer/internal/llm"
	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/prompt"
	"github.com/roivaz/issue-analyzer/internal/tracker"
)

type fakeModel struct {
	text   string
	err    error
	system string
	user   string
}

func (f *fakeModel) Complete(_ context.Context, system, user string, _ llm.Options) (llm.Response, error) {
	f.system, f.user = system, user
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text, Model: "fake", StopReason: "stop"}, nil
}

type fakeTracker struct {
	calls      []string
	labels     []string
	comment    string
	labelErr   error
	candidates []tracker.Issue
}

func (f *fakeTracker) PostComment(_ context.Context, _ tracker.IssueRef, body string) error {
	f.calls = append(f.calls, "comment")
	f.comment = body
	return nil
}

func (f *fakeTracker) ApplyLabels(_ context.Context, _ tracker.IssueRef, labels []string) error {
	f.calls = append(f.calls, "labels")
	f.labels = labels
	return f.labelErr
}

func (f *fakeTracker) EnsureLabels(_ context.Context, _, _ string, _ []string, _ string) ([]string, error) {
	f.calls = append(f.calls, "ensure")
	return nil, nil
}

func (f *fakeTracker) ListRecentIssues(_ context.Context, _, _ string, _ time.Time) ([]tracker.Issue, error) {
	f.calls = append(f.calls, "list")
	return f.candidates, nil
}

const goodResponse = "```json\n" + `{"issue_type": "bug fix", "priority": "High", "complexity": "Moderate",
 "review_feedback": "Clear steps to reproduce.", "next_steps": ["Reproduce locally", "Add a regression test"]}` + "\n```"

var fixedNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func testIssue() tracker.Issue {
	return tracker.Issue{
		Ref:   tracker.IssueRef{Owner: "octo", Repo: "hello", Number: 42},
		Title: "Login fails",
		Body:  "Steps: open the app, press login.",
	}
}

func newPipeline(t *testing.T, model Completer, tr Tracker, dryRun bool) *Pipeline {
	t.Helper()
	store, err := prompt.NewStore("")
	require.NoError(t, err)
	cfg := Config{
		Options:       llm.Options{Model: "gpt-4", Temperature: 0.1, MaxTokens: 512, ResponseFormat: llm.FormatJSON},
		Taxonomy:      analysis.DefaultTaxonomy(),
		MaxBodyTokens: 3000,
		LabelColor:    "6f42c1",
		EnsureLabels:  true,
		LookbackDays:  30,
		DryRun:        dryRun,
	}
	p, err := New(store, model, tr, cfg, logging.Discard())
	require.NoError(t, err)
	return p.WithClock(func() time.Time { return fixedNow })
}

// templateFS holds a minimal valid template set with the given overrides;
// an empty override removes the template.
func templateFS(overrides map[string]string) fstest.MapFS {
	files := map[string]string{
		prompt.AnalyzeIssueSystem: "triage {repository}: {issue_types}",
		prompt.AnalyzeIssueUser:   "{issue_title}\n{issue_body}",
		prompt.AnalysisComment:    "{issue_type} {priority}\n{review_feedback}",
		prompt.DuplicatesComment:  "{duplicates}",
	}
	for name, text := range overrides {
		files[name] = text
	}
	fsys := fstest.MapFS{}
	for name, text := range files {
		if text != "" {
			fsys[name] = &fstest.MapFile{Data: []byte(text)}
		}
	}
	return fsys
}

func testConfig() Config {
	return Config{
		Options:  llm.Options{Model: "m", MaxTokens: 1, ResponseFormat: llm.FormatText},
		Taxonomy: analysis.DefaultTaxonomy(),
	}
}

func TestRunAppliesLabelsThenComments(t *testing.T) {
	model := &fakeModel{text: goodResponse}
	tr := &fakeTracker{}

	res, err := newPipeline(t, model, tr, false).Run(context.Background(), testIssue())
	require.NoError(t, err)

	assert.Equal(t, []string{"ensure", "labels", "comment"}, tr.calls)
	assert.Equal(t, []string{"Type: Bug Fix", "Priority: High", "Complexity: Moderate"}, tr.labels)
	assert.True(t, res.Posted)

	assert.Contains(t, tr.comment, "## Issue Analysis")
	assert.Contains(t, tr.comment, "**Type:** Bug Fix")
	assert.Contains(t, tr.comment, "- Reproduce locally\n- Add a regression test")
	assert.Contains(t, tr.comment, "*Analyzed automatically at 2024-06-01 12:30:00 UTC*")

	assert.Contains(t, model.system, "Epic, Change Request, Bug Fix, Task, Question")
	assert.Contains(t, model.user, "Issue #42: Login fails")
}

func TestRunDryRunMakesNoWrites(t *testing.T) {
	tr := &fakeTracker{}
	res, err := newPipeline(t, &fakeModel{text: goodResponse}, tr, true).Run(context.Background(), testIssue())
	require.NoError(t, err)
	assert.Empty(t, tr.calls)
	assert.False(t, res.Posted)
	assert.NotEmpty(t, res.Comment)
}

func TestRunLabelFailureStopsBeforeComment(t *testing.T) {
	tr := &fakeTracker{labelErr: &tracker.APIError{Op: "apply labels", StatusCode: http.StatusNotFound, Message: "Not Found"}}

	_, err := newPipeline(t, &fakeModel{text: goodResponse}, tr, false).Run(context.Background(), testIssue())
	require.Error(t, err)
	assert.Equal(t, FailureCategoryExternalAPI, Classify(err))
	assert.NotContains(t, tr.calls, "comment")
}

func TestRunStopsOnBadModelOutput(t *testing.T) {
	cases := map[string]struct {
		text string
		want FailureCategory
	}{
		"malformed":        {"not: valid: yaml: ::", FailureCategoryMalformedOutput},
		"schema violation": {`{"issue_type": "Chore"}`, FailureCategorySchemaViolation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tr := &fakeTracker{}
			_, err := newPipeline(t, &fakeModel{text: tc.text}, tr, false).Run(context.Background(), testIssue())
			assert.Equal(t, tc.want, Classify(err))
			assert.Empty(t, tr.calls)
		})
	}
}

func TestRunPropagatesModelFailure(t *testing.T) {
	tr := &fakeTracker{}
	model := &fakeModel{err: &llm.AuthError{StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")}}
	_, err := newPipeline(t, model, tr, false).Run(context.Background(), testIssue())
	assert.Equal(t, FailureCategoryAuth, Classify(err))
	assert.Empty(t, tr.calls)
}

func TestNewRejectsBadTemplatesBeforeModelCall(t *testing.T) {
	cases := map[string]struct {
		overrides map[string]string
		check     func(t *testing.T, err error)
	}{
		"missing comment template": {
			overrides: map[string]string{prompt.AnalysisComment: ""},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)
			},
		},
		"missing duplicates template": {
			overrides: map[string]string{prompt.DuplicatesComment: ""},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)
			},
		},
		"unknown placeholder in system prompt": {
			overrides: map[string]string{prompt.AnalyzeIssueSystem: "triage {unknown_thing}"},
			check: func(t *testing.T, err error) {
				var missing *prompt.MissingPlaceholderError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, []string{"unknown_thing"}, missing.Missing)
			},
		},
		"unknown placeholder in comment": {
			overrides: map[string]string{prompt.AnalysisComment: "{issue_type} by {author}"},
			check: func(t *testing.T, err error) {
				var missing *prompt.MissingPlaceholderError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, prompt.AnalysisComment, missing.Template)
				assert.Equal(t, []string{"author"}, missing.Missing)
			},
		},
		"stray brace in duplicates comment": {
			overrides: map[string]string{prompt.DuplicatesComment: "{duplicates} {see-also}"},
			check: func(t *testing.T, err error) {
				var syntax *prompt.SyntaxError
				assert.True(t, errors.As(err, &syntax))
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			model := &fakeModel{text: goodResponse}
			tr := &fakeTracker{}
			p, err := New(prompt.NewStoreFS(templateFS(tc.overrides)), model, tr, testConfig(), logging.Discard())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, FailureCategoryConfig, Classify(err))
			tc.check(t, err)
			assert.Empty(t, model.system, "model must not be called")
			assert.Empty(t, tr.calls)
		})
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Options.Temperature = 3

	model := &fakeModel{text: goodResponse}
	_, err := New(prompt.NewStoreFS(templateFS(nil)), model, nil, cfg, logging.Discard())
	var opts *llm.OptionsError
	require.True(t, errors.As(err, &opts))
	assert.Equal(t, FailureCategoryConfig, Classify(err))

	// options only matter once a model is wired
	_, err = New(prompt.NewStoreFS(templateFS(nil)), nil, nil, cfg, logging.Discard())
	assert.NoError(t, err)
}

func TestAnalyzeWithCustomTemplates(t *testing.T) {
	model := &fakeModel{text: goodResponse}
	p, err := New(prompt.NewStoreFS(templateFS(nil)), model, nil, testConfig(), logging.Discard())
	require.NoError(t, err)

	res, err := p.Analyze(context.Background(), testIssue())
	require.NoError(t, err)
	assert.Equal(t, "triage octo/hello: Epic, Change Request, Bug Fix, Task, Question", model.system)
	assert.Equal(t, "Bug Fix High\nClear steps to reproduce.", res.Comment)
}

type constEmbedder struct{}

func (constEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.HasPrefix(t, "Login") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func TestCheckDuplicates(t *testing.T) {
	tr := &fakeTracker{candidates: []tracker.Issue{
		{Ref: tracker.IssueRef{Owner: "octo", Repo: "hello", Number: 7}, Title: "Login broken on Safari"},
		{Ref: tracker.IssueRef{Owner: "octo", Repo: "hello", Number: 8}, Title: "Dark mode"},
	}}
	finder := duplicates.NewFinder(constEmbedder{}, 0.8, logging.Discard())

	report, err := newPipeline(t, &fakeModel{}, tr, false).CheckDuplicates(context.Background(), testIssue(), finder)
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, 7, report.Matches[0].Issue.Ref.Number)
	assert.Contains(t, report.Comment, "- #7 Login broken on Safari (similarity 1.00)")
	assert.True(t, report.Posted)
	assert.Equal(t, []string{"list", "comment"}, tr.calls)
}

func TestClassify(t *testing.T) {
	cases := map[FailureCategory]error{
		FailureCategoryConfig:      &llm.OptionsError{Field: "model"},
		FailureCategoryNetwork:     &tracker.NetworkError{Op: "x", Err: errors.New("dial")},
		FailureCategoryExternalAPI: llm.ErrEmptyCompletion,
		FailureCategoryError:       errors.New("plain"),
	}
	for want, err := range cases {
		assert.Equal(t, want, Classify(err), err.Error())
	}
	assert.Equal(t, FailureCategory(""), Classify(nil))

	reason, category := GetFailureDetails(&llm.NetworkError{Err: errors.New("refused")})
	assert.Equal(t, FailureCategoryNetwork, category)
	assert.Contains(t, reason, "refused")
}
