package search

import (
	"errors"
	"fmt"
)

// Sentinel errors for search operations.
var (
	// ErrInvalidRequest indicates a request failing validation.
	ErrInvalidRequest = errors.New("invalid search request")
)

// Degradation modes carried on every response.
const (
	// DegradedNone is the full hybrid path.
	DegradedNone = ""
	// DegradedDenseOnly means fusion was skipped and only the dense
	// space was searched.
	DegradedDenseOnly = "dense_only"
	// DegradedDisabled means the index was unreachable and the
	// response is empty by necessity.
	DegradedDisabled = "disabled"
)

// Request is one search query scoped to a tenant.
type Request struct {
	// OrgID is the querying tenant; required.
	OrgID int64 `json:"org_id"`

	// Query is the free-text query. Empty or whitespace-only queries
	// return an empty response.
	Query string `json:"query"`

	// Limit overrides the engine's configured result limit when > 0.
	Limit int `json:"limit,omitempty"`

	// FileID restricts the search to one document when non-empty.
	FileID string `json:"file_id,omitempty"`

	// ContentType restricts the search to one chunk content type.
	ContentType string `json:"content_type,omitempty"`

	// ScoreThreshold overrides the engine's configured threshold when
	// > 0.
	ScoreThreshold float32 `json:"score_threshold,omitempty"`
}

// Validate checks the request.
func (r Request) Validate() error {
	if r.OrgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidRequest)
	}
	if r.Limit < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidRequest)
	}
	if r.ScoreThreshold < 0 || r.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score threshold must be in [0, 1]", ErrInvalidRequest)
	}
	return nil
}

// Result is one ranked chunk. It is a transient view, never persisted.
type Result struct {
	ChunkID          string         `json:"chunk_id"`
	FileID           string         `json:"file_id"`
	PageNumber       int            `json:"page_number"`
	Content          string         `json:"content"`
	Score            float32        `json:"score"`
	ContentType      string         `json:"content_type"`
	Status           string         `json:"status"`
	DocURL           string         `json:"doc_url,omitempty"`
	OriginalFilename string         `json:"original_filename,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Response is the search result envelope.
type Response struct {
	Results []Result `json:"results"`

	// Total is len(Results), carried for API convenience.
	Total int `json:"total"`

	// Degraded tags responses produced by a fallback path.
	Degraded string `json:"degraded,omitempty"`
}
