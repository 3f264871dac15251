package embeddings

import (
	"context"
	"fmt"
	"time"
)

// HybridProvider composes a dense embedder with a sparse embedder into
// the Provider used across ingestion and query paths.
type HybridProvider struct {
	name    string
	dense   DenseEmbedder
	sparse  SparseEmbedder
	metrics *Metrics
}

// NewHybridProvider creates a Provider from its two halves.
func NewHybridProvider(name string, dense DenseEmbedder, sparse SparseEmbedder, metrics *Metrics) (*HybridProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: provider name required", ErrInvalidConfig)
	}
	if dense == nil {
		return nil, fmt.Errorf("%w: dense embedder required", ErrInvalidConfig)
	}
	if sparse == nil {
		sparse = NewHashedSparseEmbedder(0)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &HybridProvider{
		name:    name,
		dense:   dense,
		sparse:  sparse,
		metrics: metrics,
	}, nil
}

// EmbedDocuments generates pairs for multiple texts, one per input.
func (p *HybridProvider) EmbedDocuments(ctx context.Context, texts []string) ([]Pair, error) {
	start := time.Now()
	var genErr error
	defer func() {
		p.metrics.RecordGeneration(ctx, p.name, "embed_documents", time.Since(start), len(texts), genErr)
	}()

	if len(texts) == 0 {
		genErr = fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
		return nil, genErr
	}

	dense, err := p.dense.EmbedDocuments(ctx, texts)
	if err != nil {
		genErr = err
		return nil, genErr
	}
	if len(dense) != len(texts) {
		genErr = fmt.Errorf("%w: got %d dense vectors for %d texts", ErrEmbeddingProvider, len(dense), len(texts))
		return nil, genErr
	}

	pairs := make([]Pair, len(texts))
	for i, text := range texts {
		pairs[i] = Pair{
			Dense:  dense[i],
			Sparse: p.sparse.Embed(text),
		}
	}
	return pairs, nil
}

// EmbedQuery generates the pair for a single query.
func (p *HybridProvider) EmbedQuery(ctx context.Context, text string) (Pair, error) {
	start := time.Now()
	var genErr error
	defer func() {
		p.metrics.RecordGeneration(ctx, p.name, "embed_query", time.Since(start), 1, genErr)
	}()

	if text == "" {
		genErr = fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
		return Pair{}, genErr
	}

	dense, err := p.dense.EmbedQuery(ctx, text)
	if err != nil {
		genErr = err
		return Pair{}, genErr
	}

	return Pair{
		Dense:  dense,
		Sparse: p.sparse.Embed(text),
	}, nil
}

// Dimension returns the dense embedding dimension.
func (p *HybridProvider) Dimension() int {
	return p.dense.Dimension()
}

// Name identifies the provider.
func (p *HybridProvider) Name() string {
	return p.name
}

// SparseSchemeVersion exposes the sparse scheme for index compatibility
// checks.
func (p *HybridProvider) SparseSchemeVersion() string {
	return p.sparse.SchemeVersion()
}

// Close releases resources held by the dense embedder.
func (p *HybridProvider) Close() error {
	return p.dense.Close()
}

var _ Provider = (*HybridProvider)(nil)
