package vectorstore

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid vectorstore config")

	// ErrInvalidCollectionName indicates a collection name that fails
	// validation rules.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrInvalidTenant indicates a missing or zero tenant identifier.
	ErrInvalidTenant = errors.New("invalid tenant")

	// ErrIndexUnavailable indicates the backing index cannot be
	// reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrSchema indicates the existing collection schema does not
	// match the configured vector spaces.
	ErrSchema = errors.New("collection schema mismatch")

	// ErrConnectionFailed indicates the initial connection failed.
	ErrConnectionFailed = errors.New("connection to vector store failed")
)

// Store is the hybrid vector index. Every read and delete is scoped to
// one tenant; implementations must refuse operations without a tenant.
type Store interface {
	// EnsureCollection creates the collection with both vector spaces
	// if it does not exist, and verifies the schema if it does.
	EnsureCollection(ctx context.Context) error

	// Upsert writes points into the index. Points with ids already
	// present are overwritten. Returns the number of points written.
	Upsert(ctx context.Context, points []Point) (int, error)

	// DeleteByFile removes every point belonging to one document of
	// one tenant.
	DeleteByFile(ctx context.Context, fileID string, orgID int64) error

	// GetByFile returns up to limit chunks of one document of one
	// tenant, active chunks only, ordered by page number and then
	// chunk index.
	GetByFile(ctx context.Context, fileID string, orgID int64, limit int) ([]chunker.Chunk, error)

	// QueryDense searches the dense vector space. Results are ordered
	// by similarity descending.
	QueryDense(ctx context.Context, vector []float32, params QueryParams) ([]Candidate, error)

	// QuerySparse searches the sparse vector space. Results are
	// ordered by similarity descending.
	QuerySparse(ctx context.Context, vector embeddings.SparseVector, params QueryParams) ([]Candidate, error)

	// Close releases the underlying connection.
	Close() error
}
