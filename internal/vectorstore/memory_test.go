package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
)

func testPoint(orgID int64, fileID, chunkID string, dense []float32) Point {
	return Point{
		ID:    PointID(orgID, chunkID),
		Dense: dense,
		Sparse: embeddings.SparseVector{
			Indices: []uint32{1, 5, 9},
			Values:  []float32{0.5, 0.3, 0.2},
		},
		Chunk: chunker.Chunk{
			ChunkID: chunkID,
			FileID:  fileID,
			Content: "content of " + chunkID,
			Status:  chunker.StatusActive,
			OrgID:   orgID,
		},
	}
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n, err := store.Upsert(ctx, []Point{
		testPoint(1, "f1", "c1", []float32{1, 0}),
		testPoint(1, "f1", "c2", []float32{0, 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.Len())

	t.Run("overwrites same id", func(t *testing.T) {
		n, err := store.Upsert(ctx, []Point{testPoint(1, "f1", "c1", []float32{1, 0})})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("rejects invalid point", func(t *testing.T) {
		p := testPoint(1, "f1", "c3", []float32{1, 0})
		p.Chunk.OrgID = 0
		_, err := store.Upsert(ctx, []Point{p})
		assert.ErrorIs(t, err, ErrInvalidTenant)
	})
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Upsert(ctx, []Point{
		testPoint(1, "f1", "org1-chunk", []float32{1, 0}),
		testPoint(2, "f1", "org2-chunk", []float32{1, 0}),
	})
	require.NoError(t, err)

	t.Run("query sees only own tenant", func(t *testing.T) {
		got, err := store.QueryDense(ctx, []float32{1, 0}, QueryParams{OrgID: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "org1-chunk", got[0].Chunk.ChunkID)
	})

	t.Run("get by file sees only own tenant", func(t *testing.T) {
		got, err := store.GetByFile(ctx, "f1", 2, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "org2-chunk", got[0].ChunkID)
	})

	t.Run("delete removes only own tenant", func(t *testing.T) {
		require.NoError(t, store.DeleteByFile(ctx, "f1", 1))

		got, err := store.GetByFile(ctx, "f1", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.GetByFile(ctx, "f1", 2, 10)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestMemoryStoreStatusFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	active := testPoint(1, "f1", "active-chunk", []float32{1, 0})
	archived := testPoint(1, "f1", "archived-chunk", []float32{1, 0})
	archived.Chunk.Status = chunker.StatusArchived

	_, err := store.Upsert(ctx, []Point{active, archived})
	require.NoError(t, err)

	got, err := store.QueryDense(ctx, []float32{1, 0}, QueryParams{OrgID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "active-chunk", got[0].Chunk.ChunkID)

	chunks, err := store.GetByFile(ctx, "f1", 1, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "active-chunk", chunks[0].ChunkID)
}

func TestMemoryStoreQueryDenseOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Upsert(ctx, []Point{
		testPoint(1, "f1", "exact", []float32{1, 0}),
		testPoint(1, "f1", "near", []float32{0.9, 0.1}),
		testPoint(1, "f1", "orthogonal", []float32{0, 1}),
	})
	require.NoError(t, err)

	got, err := store.QueryDense(ctx, []float32{1, 0}, QueryParams{OrgID: 1, Limit: 10})
	require.NoError(t, err)

	// Orthogonal scores zero and is dropped.
	require.Len(t, got, 2)
	assert.Equal(t, "exact", got[0].Chunk.ChunkID)
	assert.Equal(t, "near", got[1].Chunk.ChunkID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestMemoryStoreQueryDenseLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Upsert(ctx, []Point{
		testPoint(1, "f1", "c1", []float32{1, 0}),
		testPoint(1, "f1", "c2", []float32{0.9, 0.1}),
		testPoint(1, "f1", "c3", []float32{0.8, 0.2}),
	})
	require.NoError(t, err)

	got, err := store.QueryDense(ctx, []float32{1, 0}, QueryParams{OrgID: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryStoreQuerySparse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	overlap := testPoint(1, "f1", "overlap", []float32{1, 0})
	disjoint := testPoint(1, "f1", "disjoint", []float32{0, 1})
	disjoint.Sparse = embeddings.SparseVector{
		Indices: []uint32{100, 200},
		Values:  []float32{0.5, 0.5},
	}

	_, err := store.Upsert(ctx, []Point{overlap, disjoint})
	require.NoError(t, err)

	query := embeddings.SparseVector{
		Indices: []uint32{5, 9},
		Values:  []float32{0.6, 0.4},
	}
	got, err := store.QuerySparse(ctx, query, QueryParams{OrgID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "overlap", got[0].Chunk.ChunkID)

	t.Run("zero vector yields nothing", func(t *testing.T) {
		got, err := store.QuerySparse(ctx, embeddings.SparseVector{}, QueryParams{OrgID: 1, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStoreGetByFileOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p1 := testPoint(1, "f1", "c-a", []float32{1, 0})
	p1.Chunk.PageNumber = 2
	p1.Chunk.ChunkIndex = 2
	p2 := testPoint(1, "f1", "c-b", []float32{1, 0})
	p2.Chunk.PageNumber = 1
	p2.Chunk.ChunkIndex = 0
	p3 := testPoint(1, "f1", "c-c", []float32{1, 0})
	p3.Chunk.PageNumber = 1
	p3.Chunk.ChunkIndex = 1

	_, err := store.Upsert(ctx, []Point{p3, p1, p2})
	require.NoError(t, err)

	got, err := store.GetByFile(ctx, "f1", 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c-b", got[0].ChunkID)
	assert.Equal(t, "c-c", got[1].ChunkID)
	assert.Equal(t, "c-a", got[2].ChunkID)
}

func TestMemoryStoreContentTypeFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	page := testPoint(1, "f1", "page-chunk", []float32{1, 0})
	page.Chunk.ContentType = chunker.ContentTypePage
	section := testPoint(1, "f2", "section-chunk", []float32{1, 0})
	section.Chunk.ContentType = chunker.ContentTypeSection

	_, err := store.Upsert(ctx, []Point{page, section})
	require.NoError(t, err)

	got, err := store.QueryDense(ctx, []float32{1, 0}, QueryParams{OrgID: 1, Limit: 10, ContentType: "page"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "page-chunk", got[0].Chunk.ChunkID)
}
