package ingest

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Sentinel errors for ingestion.
var (
	// ErrInvalidRequest indicates a request failing validation.
	ErrInvalidRequest = errors.New("invalid ingest request")
)

// Options tunes the ingestion pipeline.
type Options struct {
	// BatchSize is the number of chunks embedded and upserted per
	// batch. Default: 32.
	BatchSize int `koanf:"batch_size"`

	// Workers bounds parallel document ingestion in IngestAll.
	// Default: 4.
	Workers int `koanf:"workers"`
}

// ApplyDefaults sets default values for unset fields.
func (o *Options) ApplyDefaults() {
	if o.BatchSize == 0 {
		o.BatchSize = 32
	}
	if o.Workers == 0 {
		o.Workers = 4
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.BatchSize < 0 || o.BatchSize > 1000 {
		return fmt.Errorf("%w: batch size must be in [0, 1000]", ErrInvalidRequest)
	}
	if o.Workers < 0 || o.Workers > 64 {
		return fmt.Errorf("%w: workers must be in [0, 64]", ErrInvalidRequest)
	}
	return nil
}

// Request identifies and scopes one document ingestion.
type Request struct {
	// FileID identifies the document; required.
	FileID string

	// OrgID is the owning tenant; required.
	OrgID int64

	// Filename drives format detection and is carried into chunks.
	Filename string

	// DocURL is pass-through document metadata.
	DocURL string

	// MaxChunkSize overrides the chunker's configured maximum when
	// > 0.
	MaxChunkSize int
}

// Validate checks the request.
func (r Request) Validate() error {
	if r.FileID == "" {
		return fmt.Errorf("%w: file id required", ErrInvalidRequest)
	}
	if r.OrgID <= 0 {
		return fmt.Errorf("%w: org id must be positive", ErrInvalidRequest)
	}
	if r.Filename == "" {
		return fmt.Errorf("%w: filename required for format detection", ErrInvalidRequest)
	}
	return nil
}

// Result summarizes one completed ingestion.
type Result struct {
	FileID        string        `json:"file_id"`
	Format        string        `json:"format"`
	ChunksIndexed int           `json:"chunks_indexed"`
	TotalPages    int           `json:"total_pages"`
	TotalWords    int           `json:"total_words"`
	Duration      time.Duration `json:"duration"`
}

// Job is one document in a batch ingestion.
type Job struct {
	Source  io.Reader
	Request Request
}

// JobError records one failed document of a batch.
type JobError struct {
	FileID string
	Err    error
}

func (e JobError) Error() string {
	return fmt.Sprintf("ingesting %s: %v", e.FileID, e.Err)
}

func (e JobError) Unwrap() error {
	return e.Err
}

// BatchResult aggregates a batch ingestion. Failures are scoped per
// document; the batch itself always runs to completion.
type BatchResult struct {
	Results []Result
	Failed  []JobError
}
