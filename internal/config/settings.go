package config

import (
	"fmt"
	"strings"
	"time"
)

// Error reports a missing or invalid configuration value. It is raised before
// any network call is made.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", strings.ToUpper(e.Key), e.Reason)
}

type LLMSettings struct {
	Provider       string // openai or ollama
	Model          string
	BaseURL        string
	APIKey         string
	OllamaURL      string
	Temperature    float64
	MaxTokens      int
	ResponseFormat string // text or json
	CallTimeout    time.Duration
	EmbeddingModel string
}

type PromptSettings struct {
	TemplateDir   string // empty means the embedded defaults
	MaxBodyTokens int
}

type TaxonomySettings struct {
	IssueTypes       []string
	PriorityLevels   []string
	ComplexityLevels []string
}

type GitHubSettings struct {
	Token        string
	Repository   string
	EventPath    string
	APIURL       string
	LabelColor   string
	EnsureLabels bool
}

type DuplicateSettings struct {
	Threshold    float64
	LookbackDays int
}

// Settings is the process configuration, built once in main and passed down.
type Settings struct {
	LogLevel   string
	Trace      bool
	LLM        LLMSettings
	Prompts    PromptSettings
	Taxonomy   TaxonomySettings
	GitHub     GitHubSettings
	Duplicates DuplicateSettings
}

// placeholderSecrets are the sample values shipped in .env templates.
var placeholderSecrets = map[string]bool{
	"your_openai_api_key_here": true,
	"your_github_token_here":   true,
}

func Load() (Settings, error) {
	s := Settings{
		LogLevel: LogLevel(),
		Trace:    TraceEnabled(),
		LLM: LLMSettings{
			Provider:       LLMProvider(),
			Model:          LLMModel(),
			BaseURL:        strings.TrimSpace(LLMBaseURL()),
			APIKey:         strings.TrimSpace(OpenAIAPIKey()),
			OllamaURL:      strings.TrimSpace(OllamaURL()),
			Temperature:    Temperature(),
			MaxTokens:      MaxTokens(),
			ResponseFormat: ResponseFormat(),
			EmbeddingModel: EmbeddingModel(),
		},
		Prompts: PromptSettings{
			TemplateDir:   strings.TrimSpace(TemplateDir()),
			MaxBodyTokens: MaxBodyTokens(),
		},
		Taxonomy: TaxonomySettings{
			IssueTypes:       IssueTypes(),
			PriorityLevels:   PriorityLevels(),
			ComplexityLevels: ComplexityLevels(),
		},
		GitHub: GitHubSettings{
			Token:        strings.TrimSpace(GitHubToken()),
			Repository:   strings.TrimSpace(GitHubRepository()),
			EventPath:    strings.TrimSpace(GitHubEventPath()),
			APIURL:       strings.TrimSpace(GitHubAPIURL()),
			LabelColor:   strings.TrimPrefix(LabelColor(), "#"),
			EnsureLabels: EnsureLabels(),
		},
		Duplicates: DuplicateSettings{
			Threshold:    DuplicateThreshold(),
			LookbackDays: DuplicateLookbackDays(),
		},
	}

	timeout, err := parseDuration(LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Settings{}, &Error{Key: KeyLLMCallTimeout, Reason: err.Error()}
	}
	s.LLM.CallTimeout = timeout

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.LLM.Provider {
	case "openai", "ollama":
	default:
		return &Error{Key: KeyLLMProvider, Reason: fmt.Sprintf("unsupported provider %q (want openai or ollama)", s.LLM.Provider)}
	}
	switch s.LLM.ResponseFormat {
	case "text", "json":
	default:
		return &Error{Key: KeyResponseFormat, Reason: fmt.Sprintf("unsupported format %q (want text or json)", s.LLM.ResponseFormat)}
	}
	if strings.TrimSpace(s.LLM.Model) == "" {
		return &Error{Key: KeyLLMModel, Reason: "must not be empty"}
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return &Error{Key: KeyTemperature, Reason: fmt.Sprintf("%g is outside [0,2]", s.LLM.Temperature)}
	}
	if s.LLM.MaxTokens <= 0 {
		return &Error{Key: KeyMaxTokens, Reason: fmt.Sprintf("%d must be positive", s.LLM.MaxTokens)}
	}
	for key, list := range map[string][]string{
		KeyIssueTypes:       s.Taxonomy.IssueTypes,
		KeyPriorityLevels:   s.Taxonomy.PriorityLevels,
		KeyComplexityLevels: s.Taxonomy.ComplexityLevels,
	} {
		if len(list) == 0 {
			return &Error{Key: key, Reason: "must list at least one value"}
		}
	}
	if s.Duplicates.Threshold < 0 || s.Duplicates.Threshold > 1 {
		return &Error{Key: KeyDuplicateThreshold, Reason: "must be within [0,1]"}
	}
	return nil
}

// RequireModelCredential fails when the selected provider needs an API key and none is set.
func (s Settings) RequireModelCredential() error {
	if s.LLM.Provider != "openai" {
		return nil
	}
	return requireSecret(KeyOpenAIAPIKey, s.LLM.APIKey)
}

// RequireGitHub fails unless both the token and repository are configured.
func (s Settings) RequireGitHub() error {
	if err := requireSecret(KeyGitHubToken, s.GitHub.Token); err != nil {
		return err
	}
	if s.GitHub.Repository == "" {
		return &Error{Key: KeyGitHubRepository, Reason: "is required (owner/repo)"}
	}
	return nil
}

func requireSecret(key, value string) error {
	if value == "" {
		return &Error{Key: key, Reason: "is required; set it in the environment or .env"}
	}
	if placeholderSecrets[value] {
		return &Error{Key: key, Reason: "still holds the sample value from .env"}
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
