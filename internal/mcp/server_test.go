package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/issue-analyzer/internal/analysis"
	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
	"github.com/roivaz/issue-analyzer/internal/prompt"
)

func TestToolDefinitionsCoverAdapters(t *testing.T) {
	store, err := prompt.NewStore("")
	require.NoError(t, err)
	p, err := pipeline.New(store, nil, nil, pipeline.Config{Taxonomy: analysis.DefaultTaxonomy(), DryRun: true}, logging.Discard())
	require.NoError(t, err)

	cfg := DefaultConfig(Deps{Pipeline: p, DefaultRepo: "octo/hello"})
	assert.Len(t, cfg.ToolAdapters, 2, "find_similar_issues needs a source and a finder")

	defs := toolDefinitions()
	for name := range cfg.ToolAdapters {
		tool, ok := defs[name]
		require.True(t, ok, name)
		assert.Equal(t, name, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}

	srv := New(cfg)
	assert.NotNil(t, srv.MCP)
	assert.NotNil(t, srv.Handler)
}
