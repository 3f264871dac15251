package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashedSparseEmbedderDeterminism(t *testing.T) {
	e := NewHashedSparseEmbedder(0)
	text := "AES-256 encryption at rest and in transit"

	first := e.Embed(text)
	second := e.Embed(text)

	assert.Equal(t, first.Indices, second.Indices)
	assert.Equal(t, first.Values, second.Values)

	// A fresh instance with the same scheme produces identical output.
	other := NewHashedSparseEmbedder(0).Embed(text)
	assert.Equal(t, first.Indices, other.Indices)
	assert.Equal(t, first.Values, other.Values)
}

func TestHashedSparseEmbedderShape(t *testing.T) {
	e := NewHashedSparseEmbedder(1 << 16)

	sv := e.Embed("alpha beta beta gamma")
	require.Len(t, sv.Values, len(sv.Indices))

	// Indices sorted ascending, unique, within the index space.
	for i := 1; i < len(sv.Indices); i++ {
		assert.Less(t, sv.Indices[i-1], sv.Indices[i])
	}
	for _, idx := range sv.Indices {
		assert.Less(t, idx, uint32(1<<16))
	}

	// Values are term frequencies normalized by token count.
	var sum float32
	for _, v := range sv.Values {
		assert.Positive(t, v)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestHashedSparseEmbedderEmptyInput(t *testing.T) {
	e := NewHashedSparseEmbedder(0)
	assert.True(t, e.Embed("").IsZero())
	assert.True(t, e.Embed("   !!! ...").IsZero())
	assert.True(t, e.Embed("a").IsZero(), "single-rune tokens are dropped")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercases", input: "Hello World", want: []string{"hello", "world"}},
		{name: "splits punctuation", input: "aes-256, encryption!", want: []string{"aes", "256", "encryption"}},
		{name: "drops single runes", input: "a b cd", want: []string{"cd"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeVersion(t *testing.T) {
	assert.Equal(t, SparseSchemeVersion, NewHashedSparseEmbedder(0).SchemeVersion())
}
