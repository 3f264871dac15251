package vectorstore

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
)

// Named vector spaces carried by every point.
const (
	vectorNameDense  = "dense"
	vectorNameSparse = "sparse"
)

// pointIDNamespace is the fixed UUIDv5 namespace for point identifiers.
var pointIDNamespace = uuid.MustParse("4f9d2a18-6c3e-4b7f-8a5d-1e0c9b7a3f64")

// PointID derives the deterministic index identifier for a chunk of a
// tenant. Re-ingesting the same document yields the same point ids, so
// upserts overwrite instead of accumulating duplicates.
func PointID(orgID int64, chunkID string) uuid.UUID {
	return uuid.NewSHA1(pointIDNamespace, []byte(fmt.Sprintf("org:%d:chunk:%s", orgID, chunkID)))
}

// Point is one indexable unit: a chunk with its two embedding vectors.
type Point struct {
	ID     uuid.UUID
	Dense  []float32
	Sparse embeddings.SparseVector
	Chunk  chunker.Chunk
}

// Validate checks the point is indexable.
func (p Point) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: point id required", ErrInvalidConfig)
	}
	if len(p.Dense) == 0 {
		return fmt.Errorf("%w: dense vector required", ErrInvalidConfig)
	}
	if p.Chunk.OrgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}
	if p.Chunk.ChunkID == "" {
		return fmt.Errorf("%w: chunk id required", ErrInvalidConfig)
	}
	return nil
}

// sortByPosition orders chunks by page number, then chunk index.
// Stores return chunks in whatever order the index yields them; this
// restores document order for per-file reads.
func sortByPosition(chunks []chunker.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].PageNumber != chunks[j].PageNumber {
			return chunks[i].PageNumber < chunks[j].PageNumber
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}

// Candidate is one scored result from a single vector space.
type Candidate struct {
	Chunk chunker.Chunk
	Score float32
}

// QueryParams scopes a single-space vector query.
type QueryParams struct {
	// OrgID is the querying tenant; required.
	OrgID int64

	// FileID restricts results to one document when non-empty.
	FileID string

	// ContentType restricts results to one chunk content type when
	// non-empty.
	ContentType string

	// Limit is the maximum number of candidates; required.
	Limit int
}

// Validate checks the query parameters.
func (p QueryParams) Validate() error {
	if p.OrgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, p.Limit)
	}
	return nil
}
