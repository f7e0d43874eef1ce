package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roivaz/issue-analyzer/internal/logging"
)

// Embedder turns texts into vectors through the configured provider.
type Embedder struct {
	inner embeddings.Embedder
	to    time.Duration
	log   logging.Logger
}

// NewEmbedder builds an Embedder on top of the client's model, which must
// implement embeddings.EmbedderClient (both openai and ollama do).
func NewEmbedder(c *Client) (*Embedder, error) {
	ec, ok := c.model.(embeddings.EmbedderClient)
	if !ok {
		return nil, &OptionsError{Field: "provider", Reason: fmt.Sprintf("%s model does not support embeddings", c.provider)}
	}
	return NewEmbedderFrom(ec, c.to, c.log)
}

// NewEmbedderFrom wraps any embeddings client.
func NewEmbedderFrom(ec embeddings.EmbedderClient, timeout time.Duration, log logging.Logger) (*Embedder, error) {
	inner, err := embeddings.NewEmbedder(ec, embeddings.WithBatchSize(64), embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Embedder{inner: inner, to: timeout, log: log.WithName("embed")}, nil
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "llm.embeddings", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("llm.request.inputs", len(texts)))

	if e.to > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.to)
		defer cancel()
	}
	ctx, st := withCallStatus(ctx)

	start := time.Now()
	vectors, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		classified := classify(err, st, e.to)
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		return nil, fmt.Errorf("embed %d text(s): %w", len(texts), classified)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed %d text(s): got %d vectors", len(texts), len(vectors))
	}
	e.log.Debug("embedded texts", "count", len(texts), "duration", time.Since(start))
	return vectors, nil
}
