package config

const (
	KeyLogLevel = "log_level"
	KeyTrace    = "trace"

	KeyLLMProvider      = "llm_provider"
	KeyLLMModel         = "llm_model"
	KeyLLMBaseURL       = "llm_base_url"
	KeyOpenAIAPIKey     = "openai_api_key"
	KeyOllamaURL        = "ollama_url"
	KeyTemperature      = "temperature"
	KeyMaxTokens        = "max_tokens"
	KeyResponseFormat   = "response_format"
	KeyLLMCallTimeout   = "llm_call_timeout"
	KeyEmbeddingModel   = "embedding_model"
	KeyTemplateDir      = "template_dir"
	KeyMaxBodyTokens    = "max_body_tokens"
	KeyIssueTypes       = "issue_types"
	KeyPriorityLevels   = "priority_levels"
	KeyComplexityLevels = "complexity_levels"

	KeyGitHubToken      = "github_token"
	KeyGitHubRepository = "github_repository"
	KeyGitHubEventPath  = "github_event_path"
	KeyGitHubAPIURL     = "github_api_url"
	KeyLabelColor       = "label_color"
	KeyEnsureLabels     = "ensure_labels"

	KeyDuplicateThreshold    = "duplicate_threshold"
	KeyDuplicateLookbackDays = "duplicate_lookback_days"
)
