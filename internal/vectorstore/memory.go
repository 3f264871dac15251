package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
)

// MemoryStore is an in-process Store for tests and offline development.
// It applies the same tenant and status filtering as QdrantStore and
// scores with cosine similarity for the dense space and dot product
// for the sparse space.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[uuid.UUID]Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		points: make(map[uuid.UUID]Point),
	}
}

// EnsureCollection is a no-op for the in-memory store.
func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	return nil
}

// Upsert writes points, overwriting any with the same id.
func (s *MemoryStore) Upsert(ctx context.Context, points []Point) (int, error) {
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("point %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.points[p.ID] = p
	}
	return len(points), nil
}

// DeleteByFile removes every point of one document of one tenant.
func (s *MemoryStore) DeleteByFile(ctx context.Context, fileID string, orgID int64) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id required", ErrInvalidConfig)
	}
	if orgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.Chunk.OrgID == orgID && p.Chunk.FileID == fileID {
			delete(s.points, id)
		}
	}
	return nil
}

// GetByFile returns up to limit active chunks of one document.
func (s *MemoryStore) GetByFile(ctx context.Context, fileID string, orgID int64, limit int) ([]chunker.Chunk, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id required", ErrInvalidConfig)
	}
	if orgID <= 0 {
		return nil, fmt.Errorf("%w: org id must be positive", ErrInvalidTenant)
	}
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []chunker.Chunk
	for _, p := range s.points {
		c := p.Chunk
		if c.OrgID == orgID && c.FileID == fileID && c.Status == chunker.StatusActive {
			chunks = append(chunks, c)
		}
	}

	sortByPosition(chunks)
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// QueryDense searches the dense space with cosine similarity.
func (s *MemoryStore) QueryDense(ctx context.Context, vector []float32, params QueryParams) ([]Candidate, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: dense query vector required", ErrInvalidConfig)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.scan(params, func(p Point) float32 {
		return cosineSimilarity(vector, p.Dense)
	}), nil
}

// QuerySparse searches the sparse space with dot product.
func (s *MemoryStore) QuerySparse(ctx context.Context, vector embeddings.SparseVector, params QueryParams) ([]Candidate, error) {
	if vector.IsZero() {
		return nil, nil
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.scan(params, func(p Point) float32 {
		return sparseDot(vector, p.Sparse)
	}), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored points.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// scan scores every matching point and returns the top candidates.
// Zero-score points are dropped to mirror non-matching index behavior.
func (s *MemoryStore) scan(params QueryParams, score func(Point) float32) []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []Candidate
	for _, p := range s.points {
		if !matchesParams(p.Chunk, params) {
			continue
		}
		sc := score(p)
		if sc <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{Chunk: p.Chunk, Score: sc})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Chunk.ChunkID < candidates[j].Chunk.ChunkID
	})
	if len(candidates) > params.Limit {
		candidates = candidates[:params.Limit]
	}
	return candidates
}

func matchesParams(c chunker.Chunk, params QueryParams) bool {
	if c.OrgID != params.OrgID {
		return false
	}
	if c.Status != chunker.StatusActive {
		return false
	}
	if params.FileID != "" && c.FileID != params.FileID {
		return false
	}
	if params.ContentType != "" && string(c.ContentType) != params.ContentType {
		return false
	}
	return true
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func sparseDot(a, b embeddings.SparseVector) float32 {
	var dot float32
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
