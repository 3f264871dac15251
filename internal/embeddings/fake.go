package embeddings

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// DeterministicDenseEmbedder is a vocabulary-indexed bag-of-words dense
// embedder for tests and offline development.
//
// Each distinct token is assigned the next free dimension on first
// sight, so texts sharing tokens have positive cosine similarity and
// unrelated texts score zero. It is deterministic for a given instance
// and requires no model download.
type DeterministicDenseEmbedder struct {
	dim   int
	mu    sync.Mutex
	vocab map[string]int
}

// NewDeterministicDenseEmbedder creates a fake dense embedder with the
// given dimension.
func NewDeterministicDenseEmbedder(dim int) *DeterministicDenseEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &DeterministicDenseEmbedder{
		dim:   dim,
		vocab: make(map[string]int),
	}
}

func (e *DeterministicDenseEmbedder) embed(text string) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		idx, ok := e.vocab[tok]
		if !ok {
			idx = len(e.vocab)
			e.vocab[tok] = idx
		}
		vec[idx%e.dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// EmbedDocuments generates embeddings for multiple texts.
func (e *DeterministicDenseEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

// EmbedQuery generates an embedding for a single query.
func (e *DeterministicDenseEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	return e.embed(text), nil
}

// Dimension returns the embedding dimension.
func (e *DeterministicDenseEmbedder) Dimension() int { return e.dim }

// Close is a no-op.
func (e *DeterministicDenseEmbedder) Close() error { return nil }

var _ DenseEmbedder = (*DeterministicDenseEmbedder)(nil)
