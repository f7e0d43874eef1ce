package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roivaz/issue-analyzer/internal/logging"
)

var tracer = otel.GetTracerProvider().Tracer("issue-analyzer/llm")

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DefaultOllamaURL = "http://localhost:11434"
)

// Config selects and reaches a model provider. Per-call behaviour lives in Options.
type Config struct {
	Provider       string
	Model          string
	BaseURL        string // OpenAI-compatible endpoint, empty for api.openai.com
	APIKey         string
	OllamaURL      string
	EmbeddingModel string
	CallTimeout    time.Duration
	HTTPClient     *http.Client
}

func (c Config) ollamaURL() string {
	if u := strings.TrimRight(strings.TrimSpace(c.OllamaURL), "/"); u != "" {
		return u
	}
	return DefaultOllamaURL
}

// Response is the text of the first completion choice.
type Response struct {
	Text       string
	Model      string
	StopReason string
}

type Client struct {
	model    llms.Model
	provider string
	to       time.Duration
	log      logging.Logger
}

// New builds a Client for cfg.Provider. A missing OpenAI key is an *AuthError
// so the failure surfaces before any request is attempted.
func New(cfg Config, log logging.Logger) (*Client, error) {
	httpClient := instrumentHTTPClient(cfg.HTTPClient)

	var model llms.Model
	switch cfg.Provider {
	case ProviderOpenAI, "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, &AuthError{Err: errors.New("OPENAI_API_KEY is not set")}
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.EmbeddingModel != "" {
			opts = append(opts, openai.WithEmbeddingModel(cfg.EmbeddingModel))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		model = m
	case ProviderOllama:
		m, err := ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(cfg.ollamaURL()),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		model = m
	default:
		return nil, &OptionsError{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", cfg.Provider)}
	}

	return NewWithModel(model, cfg.Provider, cfg.CallTimeout, log), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, provider string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{model: model, provider: provider, to: timeout, log: log.WithName("llm")}
}

// Model exposes the underlying langchaingo model, used to build embedders.
func (c *Client) Model() llms.Model { return c.model }

// Complete sends one system+user exchange and returns the first choice. It
// makes exactly one attempt.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (Response, error) {
	if err := opts.Validate(); err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "llm.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", opts.Model),
		attribute.Float64("llm.request.temperature", opts.Temperature),
		attribute.Int("llm.request.max_tokens", opts.MaxTokens),
		attribute.String("llm.request.format", string(opts.ResponseFormat)),
	)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	ctx, st := withCallStatus(ctx)

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: system}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: user}}},
	}
	callOpts := []llms.CallOption{
		llms.WithModel(opts.Model),
		llms.WithTemperature(opts.Temperature),
		llms.WithMaxTokens(opts.MaxTokens),
	}
	if opts.ResponseFormat == FormatJSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	start := time.Now()
	c.log.Debug("calling model", "provider", c.provider, "model", opts.Model, "systemChars", len(system), "userChars", len(user))
	resp, err := c.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		var classified error
		if errors.Is(err, openai.ErrEmptyResponse) {
			classified = ErrEmptyCompletion
		} else {
			classified = classify(err, st, c.to)
		}
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		c.log.Debug("model call failed", "duration", time.Since(start), "error", classified.Error())
		return Response{}, classified
	}
	if resp == nil || len(resp.Choices) == 0 {
		span.SetAttributes(attribute.Int("llm.response.choices", 0))
		span.SetStatus(codes.Error, ErrEmptyCompletion.Error())
		return Response{}, ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	span.SetAttributes(
		attribute.Int("llm.response.choices", len(resp.Choices)),
		attribute.String("llm.response.stop_reason", choice.StopReason),
		attribute.Int("llm.response.chars", len(choice.Content)),
	)
	c.log.Debug("model call finished", "duration", time.Since(start), "stopReason", choice.StopReason)
	return Response{Text: choice.Content, Model: opts.Model, StopReason: choice.StopReason}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}
