package embeddings

import (
	"context"
	"errors"
)

// Sentinel errors for embedding operations.
var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingProvider indicates embedding generation failure. It is
	// always surfaced: substituting a zero vector would silently corrupt
	// ranking quality with no visible symptom.
	ErrEmbeddingProvider = errors.New("embedding provider failed")
)

// SparseVector holds index/value pairs capturing lexical importance.
// Indices are sorted ascending and unique.
type SparseVector struct {
	Indices []uint32 `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsZero reports whether the vector has no entries.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// Pair is the dense/sparse embedding pair for one text unit. Pairs are
// owned 1:1 by a chunk and never persisted independently.
type Pair struct {
	Dense  []float32
	Sparse SparseVector
}

// DenseEmbedder generates fixed-dimension dense vectors from text.
type DenseEmbedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query. Some models
	// optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension for the current model.
	Dimension() int

	// Close releases resources held by the embedder.
	Close() error
}

// SparseEmbedder generates sparse lexical vectors from text.
//
// Determinism requirement: identical text and identical scheme version
// must always produce identical output. Changing the scheme invalidates
// prior indexes and requires full re-indexing.
type SparseEmbedder interface {
	// Embed generates the sparse vector for one text unit.
	Embed(text string) SparseVector

	// SchemeVersion identifies the tokenization/hashing scheme.
	SchemeVersion() string
}

// Provider produces the dense/sparse pair for chunks and queries.
type Provider interface {
	// EmbedDocuments generates pairs for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([]Pair, error)

	// EmbedQuery generates the pair for a single query using the same
	// methods as EmbedDocuments (embedding symmetry).
	EmbedQuery(ctx context.Context, text string) (Pair, error)

	// Dimension returns the dense embedding dimension.
	Dimension() int

	// Name identifies the provider for logging and registry selection.
	Name() string

	// Close releases resources held by the provider.
	Close() error
}
