package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/issue-analyzer/internal/logging"
)

type fakeEmbedderClient struct {
	err error
}

func (f fakeEmbedderClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func TestEmbedDocuments(t *testing.T) {
	e, err := NewEmbedderFrom(fakeEmbedderClient{}, 0, logging.Discard())
	require.NoError(t, err)

	vectors, err := e.EmbedDocuments(context.Background(), []string{"ab", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}, {4, 1}}, vectors)

	vectors, err = e.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedDocumentsWrapsFailure(t *testing.T) {
	e, err := NewEmbedderFrom(fakeEmbedderClient{err: errors.New("boom")}, 0, logging.Discard())
	require.NoError(t, err)

	_, err = e.EmbedDocuments(context.Background(), []string{"x"})
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestNewEmbedderRequiresEmbeddingSupport(t *testing.T) {
	c := NewWithModel(&fakeModel{}, "fake", 0, logging.Discard())
	_, err := NewEmbedder(c)
	var optErr *OptionsError
	assert.True(t, errors.As(err, &optErr))
}
