package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *HybridProvider {
	t.Helper()
	p, err := NewHybridProvider("test", NewDeterministicDenseEmbedder(64), NewHashedSparseEmbedder(0), nil)
	require.NoError(t, err)
	return p
}

func TestHybridProviderEmbedDocuments(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	pairs, err := p.EmbedDocuments(ctx, []string{"alpha beta", "gamma delta"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	for _, pair := range pairs {
		assert.Len(t, pair.Dense, 64)
		assert.False(t, pair.Sparse.IsZero())
	}
}

func TestHybridProviderSymmetry(t *testing.T) {
	// The query path and document path must use identical sparse schemes.
	p := newTestProvider(t)
	ctx := context.Background()

	docPairs, err := p.EmbedDocuments(ctx, []string{"encryption at rest"})
	require.NoError(t, err)
	queryPair, err := p.EmbedQuery(ctx, "encryption at rest")
	require.NoError(t, err)

	assert.Equal(t, docPairs[0].Sparse.Indices, queryPair.Sparse.Indices)
	assert.Equal(t, docPairs[0].Sparse.Values, queryPair.Sparse.Values)
}

func TestHybridProviderEmptyInput(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.EmbedDocuments(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedQuery(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// failingDense always fails, for fallback and retry tests.
type failingDense struct {
	dim   int
	calls int
	// failUntil makes the embedder succeed from the nth call on.
	failUntil int
}

func (f *failingDense) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return nil, errors.Join(ErrEmbeddingProvider, errors.New("transient"))
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func (f *failingDense) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *failingDense) Dimension() int { return f.dim }
func (f *failingDense) Close() error   { return nil }

func TestHybridProviderSurfacesFailure(t *testing.T) {
	// Failure is surfaced, never replaced with a placeholder vector.
	p, err := NewHybridProvider("failing", &failingDense{dim: 8, failUntil: 100}, nil, nil)
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEmbeddingProvider)
}

func TestRegistry(t *testing.T) {
	fallback := newTestProvider(t)
	reg, err := NewRegistry(fallback)
	require.NoError(t, err)

	t.Run("default for unknown org", func(t *testing.T) {
		assert.Same(t, fallback, reg.ProviderFor(99).(*HybridProvider))
	})

	t.Run("per-org override", func(t *testing.T) {
		override, err := NewHybridProvider("override", NewDeterministicDenseEmbedder(64), nil, nil)
		require.NoError(t, err)
		require.NoError(t, reg.Register(7, override))
		assert.Equal(t, "override", reg.ProviderFor(7).Name())
		assert.Equal(t, "test", reg.ProviderFor(8).Name())
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		wrong, err := NewHybridProvider("wrong", NewDeterministicDenseEmbedder(128), nil, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, reg.Register(9, wrong), ErrInvalidConfig)
	})
}

func TestRetryingProvider(t *testing.T) {
	t.Run("recovers from transient failure", func(t *testing.T) {
		dense := &failingDense{dim: 8, failUntil: 2}
		inner, err := NewHybridProvider("flaky", dense, nil, nil)
		require.NoError(t, err)
		p, err := NewRetryingProvider(inner, RetryConfig{MaxRetries: 3, Backoff: time.Millisecond})
		require.NoError(t, err)

		pairs, err := p.EmbedDocuments(context.Background(), []string{"text"})
		require.NoError(t, err)
		assert.Len(t, pairs, 1)
		assert.Equal(t, 3, dense.calls)
	})

	t.Run("exhausts retries", func(t *testing.T) {
		inner, err := NewHybridProvider("dead", &failingDense{dim: 8, failUntil: 100}, nil, nil)
		require.NoError(t, err)
		p, err := NewRetryingProvider(inner, RetryConfig{MaxRetries: 2, Backoff: time.Millisecond})
		require.NoError(t, err)

		_, err = p.EmbedDocuments(context.Background(), []string{"text"})
		assert.ErrorIs(t, err, ErrEmbeddingProvider)
	})

	t.Run("does not retry malformed input", func(t *testing.T) {
		dense := &failingDense{dim: 8}
		inner, err := NewHybridProvider("ok", dense, nil, nil)
		require.NoError(t, err)
		p, err := NewRetryingProvider(inner, RetryConfig{MaxRetries: 3, Backoff: time.Millisecond})
		require.NoError(t, err)

		_, err = p.EmbedQuery(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Zero(t, dense.calls)
	})
}
