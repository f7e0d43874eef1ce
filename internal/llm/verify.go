package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// VerifyCredential lists the models visible to the configured credential on
// an OpenAI-compatible endpoint. Ollama is reached through its /v1 API.
func VerifyCredential(ctx context.Context, cfg Config) ([]string, error) {
	token := cfg.APIKey
	baseURL := cfg.BaseURL
	switch cfg.Provider {
	case ProviderOllama:
		token = "ollama"
		baseURL = cfg.ollamaURL() + "/v1"
	default:
		if strings.TrimSpace(token) == "" {
			return nil, &AuthError{Err: errors.New("OPENAI_API_KEY is not set")}
		}
	}

	oc := goopenai.DefaultConfig(token)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	client := goopenai.NewClientWithConfig(oc)

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return &NetworkError{Err: err}
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: status, Err: err}
	default:
		return &APIError{StatusCode: status, Err: fmt.Errorf("list models: %w", err)}
	}
}
