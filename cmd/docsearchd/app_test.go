package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsearchd/internal/config"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
)

// Memory mode must stand up without external services, so the provider
// stack cannot depend on a model download.
func TestBuildProviderMemoryMode(t *testing.T) {
	old := useMemoryStore
	defer func() { useMemoryStore = old }()
	useMemoryStore = true

	cfg := &config.Config{}
	cfg.Qdrant.VectorSize = 64
	cfg.Embeddings.SparseIndexSpace = embeddings.DefaultSparseIndexSpace
	cfg.Embeddings.Retry.ApplyDefaults()

	provider, err := buildProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, 64, provider.Dimension())

	pair, err := provider.EmbedQuery(context.Background(), "encryption at rest")
	require.NoError(t, err)
	assert.Len(t, pair.Dense, 64)
	assert.NotEmpty(t, pair.Sparse.Indices)
}
