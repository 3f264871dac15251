package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// Service runs the ingestion pipeline against one collection.
type Service struct {
	extractors *extraction.Registry
	chunker    *chunker.Chunker
	providers  *embeddings.Registry
	store      vectorstore.Store
	logger     *logging.Logger
	opts       Options

	ensureMu sync.Mutex
	ensured  bool
}

// NewService creates an ingestion service.
func NewService(extractors *extraction.Registry, ch *chunker.Chunker, providers *embeddings.Registry, store vectorstore.Store, opts Options, logger *logging.Logger) (*Service, error) {
	if extractors == nil {
		return nil, fmt.Errorf("%w: extractor registry required", ErrInvalidRequest)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: chunker required", ErrInvalidRequest)
	}
	if providers == nil {
		return nil, fmt.Errorf("%w: provider registry required", ErrInvalidRequest)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store required", ErrInvalidRequest)
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		extractors: extractors,
		chunker:    ch,
		providers:  providers,
		store:      store,
		logger:     logger.Named("ingest"),
		opts:       opts,
	}, nil
}

// ensure creates the collection on first use. Failures are retried on
// the next call instead of being cached.
func (s *Service) ensure(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensuring collection: %w", err)
	}
	s.ensured = true
	return nil
}

// IngestDocument extracts, chunks, embeds and indexes one document.
//
// Chunks stream through the index in batches, in page order, so peak
// memory is bounded by the batch size. The context is checked between
// batches; a canceled run leaves complete batches indexed, and
// deterministic ids make a later retry overwrite them cleanly.
func (s *Service) IngestDocument(ctx context.Context, src io.Reader, req Request) (*Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = logging.ContextWithOrgID(ctx, req.OrgID)
	ctx = logging.ContextWithFileID(ctx, req.FileID)

	// Index unavailability fails loud here. The caller owns retries;
	// only the query path degrades silently.
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	format, err := extraction.FormatFromFilename(req.Filename)
	if err != nil {
		return nil, err
	}
	doc, err := s.extractors.Extract(ctx, format, src, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", req.Filename, err)
	}

	res, err := s.chunker.ChunkDocument(ctx, doc, chunker.Request{
		FileID:           req.FileID,
		OrgID:            req.OrgID,
		DocURL:           req.DocURL,
		OriginalFilename: req.Filename,
		MaxChunkSize:     req.MaxChunkSize,
	})
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", req.Filename, err)
	}

	provider := s.providers.ProviderFor(req.OrgID)
	indexed := 0
	for batchStart := 0; batchStart < len(res.Chunks); batchStart += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion canceled after %d chunks: %w", indexed, err)
		}

		end := batchStart + s.opts.BatchSize
		if end > len(res.Chunks) {
			end = len(res.Chunks)
		}
		batch := res.Chunks[batchStart:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		pairs, err := provider.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch at chunk %d: %w", batchStart, err)
		}

		points := make([]vectorstore.Point, len(batch))
		for i, c := range batch {
			points[i] = vectorstore.Point{
				ID:     vectorstore.PointID(c.OrgID, c.ChunkID),
				Dense:  pairs[i].Dense,
				Sparse: pairs[i].Sparse,
				Chunk:  c,
			}
		}

		n, err := s.store.Upsert(ctx, points)
		if err != nil {
			return nil, fmt.Errorf("indexing batch at chunk %d: %w", batchStart, err)
		}
		indexed += n
	}

	result := &Result{
		FileID:        req.FileID,
		Format:        res.Metadata.Format,
		ChunksIndexed: indexed,
		TotalPages:    res.TotalPages,
		TotalWords:    res.TotalWords,
		Duration:      time.Since(start),
	}

	s.logger.Info(ctx, "document ingested",
		zap.String("format", result.Format),
		zap.Int("chunks", result.ChunksIndexed),
		zap.Int("pages", result.TotalPages),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// IngestAll ingests multiple documents with bounded parallelism.
// Failures are collected per document; one bad document never aborts
// the batch.
func (s *Service) IngestAll(ctx context.Context, jobs []Job) *BatchResult {
	var (
		mu    sync.Mutex
		batch BatchResult
	)

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	for _, job := range jobs {
		g.Go(func() error {
			result, err := s.IngestDocument(ctx, job.Source, job.Request)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error(ctx, "document ingestion failed",
					zap.String("file_id", job.Request.FileID),
					zap.Error(err),
				)
				batch.Failed = append(batch.Failed, JobError{FileID: job.Request.FileID, Err: err})
				return nil
			}
			batch.Results = append(batch.Results, *result)
			return nil
		})
	}
	_ = g.Wait()

	return &batch
}

// DeleteDocument removes every indexed chunk of one document of one
// tenant. Returns whether anything was indexed under that id.
func (s *Service) DeleteDocument(ctx context.Context, fileID string, orgID int64) (bool, error) {
	if fileID == "" {
		return false, fmt.Errorf("%w: file id required", ErrInvalidRequest)
	}
	if orgID <= 0 {
		return false, fmt.Errorf("%w: org id must be positive", ErrInvalidRequest)
	}
	ctx = logging.ContextWithOrgID(ctx, orgID)
	ctx = logging.ContextWithFileID(ctx, fileID)

	existing, err := s.store.GetByFile(ctx, fileID, orgID, 1)
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", fileID, err)
	}
	found := len(existing) > 0

	if err := s.store.DeleteByFile(ctx, fileID, orgID); err != nil {
		return false, fmt.Errorf("deleting document %s: %w", fileID, err)
	}

	if found {
		s.logger.Info(ctx, "document deleted")
	}
	return found, nil
}
