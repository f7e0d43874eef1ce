package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", s.LLM.Provider)
	assert.Equal(t, "json", s.LLM.ResponseFormat)
	assert.Equal(t, 2*time.Minute, s.LLM.CallTimeout)
	assert.Equal(t, []string{"Epic", "Change Request", "Bug Fix", "Task", "Question"}, s.Taxonomy.IssueTypes)
	assert.Equal(t, []string{"Critical", "High", "Medium", "Low"}, s.Taxonomy.PriorityLevels)
	assert.Equal(t, "6f42c1", s.GitHub.LabelColor)
	assert.True(t, s.GitHub.EnsureLabels)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		key   string
		value any
	}{
		"provider":  {KeyLLMProvider, "bedrock"},
		"format":    {KeyResponseFormat, "xml"},
		"timeout":   {KeyLLMCallTimeout, "soon"},
		"threshold": {KeyDuplicateThreshold, 1.5},
		"model":     {KeyLLMModel, " "},
		"hot":       {KeyTemperature, 3},
		"negative":  {KeyTemperature, -0.5},
		"no tokens": {KeyMaxTokens, 0},
		"types":     {KeyIssueTypes, " , "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tc.key, tc.value)

			_, err := Load()
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %v", err)
			assert.Equal(t, tc.key, cfgErr.Key)
		})
	}
}

func TestRequireModelCredential(t *testing.T) {
	s := Settings{LLM: LLMSettings{Provider: "openai"}}
	assert.Error(t, s.RequireModelCredential())

	s.LLM.APIKey = "your_openai_api_key_here"
	assert.Error(t, s.RequireModelCredential())

	s.LLM.APIKey = "sk-test"
	assert.NoError(t, s.RequireModelCredential())

	s = Settings{LLM: LLMSettings{Provider: "ollama"}}
	assert.NoError(t, s.RequireModelCredential())
}

func TestRequireGitHub(t *testing.T) {
	s := Settings{GitHub: GitHubSettings{Token: "ghp_x"}}
	err := s.RequireGitHub()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KeyGitHubRepository, cfgErr.Key)

	s.GitHub.Repository = "octo/hello"
	assert.NoError(t, s.RequireGitHub())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c ,"))
	assert.Nil(t, splitList(""))
}
