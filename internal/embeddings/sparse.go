package embeddings

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
)

// SparseSchemeVersion identifies the current tokenization/hashing
// scheme. Bump it whenever the tokenizer, hash function, or index space
// changes: prior indexes become invalid and require full re-indexing.
const SparseSchemeVersion = "tf-fnv1a-v1"

// DefaultSparseIndexSpace is the default bounded index space for hashed
// tokens. Tokens hash into [0, space) without collision handling; a
// larger space reduces (but does not eliminate) silent term-identity
// collisions. See the design notes before shrinking it.
const DefaultSparseIndexSpace = 1 << 20

// HashedSparseEmbedder is a local term-frequency sparse embedder.
//
// Tokens are lowercased, stripped of punctuation, hashed with FNV-1a
// into a bounded index space, and weighted by term frequency normalized
// by document length. It is fully deterministic for a given scheme
// version.
type HashedSparseEmbedder struct {
	indexSpace uint32
}

// NewHashedSparseEmbedder creates a sparse embedder. An indexSpace of 0
// selects DefaultSparseIndexSpace.
func NewHashedSparseEmbedder(indexSpace uint32) *HashedSparseEmbedder {
	if indexSpace == 0 {
		indexSpace = DefaultSparseIndexSpace
	}
	return &HashedSparseEmbedder{indexSpace: indexSpace}
}

// SchemeVersion identifies the tokenization/hashing scheme.
func (e *HashedSparseEmbedder) SchemeVersion() string {
	return SparseSchemeVersion
}

// Embed generates the sparse vector for one text unit. Empty or
// token-free text yields a zero vector.
func (e *HashedSparseEmbedder) Embed(text string) SparseVector {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return SparseVector{}
	}

	counts := make(map[uint32]float32, len(tokens))
	for _, tok := range tokens {
		counts[e.hashToken(tok)]++
	}

	total := float32(len(tokens))
	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx] / total
	}

	return SparseVector{Indices: indices, Values: values}
}

// hashToken maps a token into the bounded index space with FNV-1a.
func (e *HashedSparseEmbedder) hashToken(tok string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tok))
	return h.Sum32() % e.indexSpace
}

// tokenize lowercases and splits text on non-alphanumeric runes,
// dropping single-rune tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

var _ SparseEmbedder = (*HashedSparseEmbedder)(nil)
