package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roivaz/issue-analyzer/internal/llm"
)

// Init loads .env, enables environment lookup and binds the root persistent
// flags, with dashes in flag names mapped to underscores in keys.
func Init(root *cobra.Command) {
	_ = godotenv.Load(".env")
	viper.AutomaticEnv()
	if root != nil {
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyTrace, false)
	viper.SetDefault(KeyLLMProvider, "openai")
	viper.SetDefault(KeyLLMModel, "gpt-4")
	viper.SetDefault(KeyOllamaURL, llm.DefaultOllamaURL)
	viper.SetDefault(KeyTemperature, 0.1)
	viper.SetDefault(KeyMaxTokens, 4096)
	viper.SetDefault(KeyResponseFormat, "json")
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyEmbeddingModel, "text-embedding-3-small")
	viper.SetDefault(KeyMaxBodyTokens, 3000)
	viper.SetDefault(KeyIssueTypes, "Epic,Change Request,Bug Fix,Task,Question")
	viper.SetDefault(KeyPriorityLevels, "Critical,High,Medium,Low")
	viper.SetDefault(KeyComplexityLevels, "Simple,Moderate,Complex")
	viper.SetDefault(KeyLabelColor, "6f42c1")
	viper.SetDefault(KeyEnsureLabels, true)
	viper.SetDefault(KeyDuplicateThreshold, 0.8)
	viper.SetDefault(KeyDuplicateLookbackDays, 30)
}

func LogLevel() string            { return viper.GetString(KeyLogLevel) }
func TraceEnabled() bool          { return viper.GetBool(KeyTrace) }
func LLMProvider() string         { return strings.ToLower(viper.GetString(KeyLLMProvider)) }
func LLMModel() string            { return viper.GetString(KeyLLMModel) }
func LLMBaseURL() string          { return viper.GetString(KeyLLMBaseURL) }
func OpenAIAPIKey() string        { return viper.GetString(KeyOpenAIAPIKey) }
func OllamaURL() string           { return viper.GetString(KeyOllamaURL) }
func Temperature() float64        { return viper.GetFloat64(KeyTemperature) }
func MaxTokens() int              { return viper.GetInt(KeyMaxTokens) }
func ResponseFormat() string      { return strings.ToLower(viper.GetString(KeyResponseFormat)) }
func LLMCallTimeout() string      { return viper.GetString(KeyLLMCallTimeout) }
func EmbeddingModel() string      { return viper.GetString(KeyEmbeddingModel) }
func TemplateDir() string         { return viper.GetString(KeyTemplateDir) }
func MaxBodyTokens() int          { return viper.GetInt(KeyMaxBodyTokens) }
func IssueTypes() []string        { return splitList(viper.GetString(KeyIssueTypes)) }
func PriorityLevels() []string    { return splitList(viper.GetString(KeyPriorityLevels)) }
func ComplexityLevels() []string  { return splitList(viper.GetString(KeyComplexityLevels)) }
func GitHubToken() string         { return viper.GetString(KeyGitHubToken) }
func GitHubRepository() string    { return viper.GetString(KeyGitHubRepository) }
func GitHubEventPath() string     { return viper.GetString(KeyGitHubEventPath) }
func GitHubAPIURL() string        { return viper.GetString(KeyGitHubAPIURL) }
func LabelColor() string          { return viper.GetString(KeyLabelColor) }
func EnsureLabels() bool          { return viper.GetBool(KeyEnsureLabels) }
func DuplicateThreshold() float64 { return viper.GetFloat64(KeyDuplicateThreshold) }
func DuplicateLookbackDays() int  { return viper.GetInt(KeyDuplicateLookbackDays) }

// splitList turns a comma separated env value into a trimmed list without empties.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
