package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// maxLimit caps the requested result count.
const maxLimit = 100

// Options tunes the query engine. RRFK and Oversample are empirical
// defaults, not design invariants.
type Options struct {
	// Limit is the default result count. Default: 10.
	Limit int `koanf:"limit"`

	// ScoreThreshold is the minimum normalized fused score. Default:
	// 0.3.
	ScoreThreshold float32 `koanf:"score_threshold"`

	// RRFK is the reciprocal rank fusion smoothing constant. Default:
	// 60.
	RRFK int `koanf:"rrf_k"`

	// Oversample multiplies the limit for per-space retrieval before
	// fusion. Default: 2.
	Oversample int `koanf:"oversample"`

	// DenseFallbackThreshold is the minimum raw cosine score in
	// dense-only mode, where the fused threshold is not meaningful.
	// Default: 0.5.
	DenseFallbackThreshold float32 `koanf:"dense_fallback_threshold"`
}

// ApplyDefaults sets default values for unset fields.
func (o *Options) ApplyDefaults() {
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.ScoreThreshold == 0 {
		o.ScoreThreshold = 0.3
	}
	if o.RRFK == 0 {
		o.RRFK = 60
	}
	if o.Oversample == 0 {
		o.Oversample = 2
	}
	if o.DenseFallbackThreshold == 0 {
		o.DenseFallbackThreshold = 0.5
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.Limit < 0 || o.Limit > maxLimit {
		return fmt.Errorf("%w: limit must be in [0, %d]", ErrInvalidRequest, maxLimit)
	}
	if o.ScoreThreshold < 0 || o.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score threshold must be in [0, 1]", ErrInvalidRequest)
	}
	if o.RRFK < 0 {
		return fmt.Errorf("%w: rrf k cannot be negative", ErrInvalidRequest)
	}
	if o.Oversample < 0 || o.Oversample > 10 {
		return fmt.Errorf("%w: oversample must be in [0, 10]", ErrInvalidRequest)
	}
	return nil
}

// Engine answers free-text queries against the hybrid index.
type Engine struct {
	store     vectorstore.Store
	providers *embeddings.Registry
	logger    *logging.Logger
	opts      Options
	metrics   *Metrics

	ensureMu sync.Mutex
	ensured  bool
}

// NewEngine creates a query engine.
func NewEngine(store vectorstore.Store, providers *embeddings.Registry, opts Options, logger *logging.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store required", ErrInvalidRequest)
	}
	if providers == nil {
		return nil, fmt.Errorf("%w: provider registry required", ErrInvalidRequest)
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:     store,
		providers: providers,
		logger:    logger.Named("search"),
		opts:      opts,
		metrics:   NewMetrics(nil),
	}, nil
}

// Search runs the hybrid query pipeline for one request.
//
// Failures never reach the caller as errors once the request itself is
// valid: the engine degrades from fused to dense-only to a tagged
// empty response.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := e.search(ctx, req)
	if resp != nil {
		e.metrics.RecordSearch(ctx, resp.Degraded, time.Since(start), len(resp.Results))
	}
	return resp, err
}

// ensure creates the collection on first use. A failed attempt is
// retried on the next query instead of being cached, so a store outage
// at first query does not disable search permanently.
func (e *Engine) ensure(ctx context.Context) {
	e.ensureMu.Lock()
	defer e.ensureMu.Unlock()
	if e.ensured {
		return
	}
	if err := e.store.EnsureCollection(ctx); err != nil {
		e.logger.Warn(ctx, "ensuring collection failed", zap.Error(err))
		return
	}
	e.ensured = true
}

func (e *Engine) search(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return &Response{Results: []Result{}}, nil
	}

	ctx = logging.ContextWithOrgID(ctx, req.OrgID)

	limit := e.opts.Limit
	if req.Limit > 0 {
		limit = req.Limit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	threshold := e.opts.ScoreThreshold
	if req.ScoreThreshold > 0 {
		threshold = req.ScoreThreshold
	}

	// A missing collection is created lazily and treated as empty,
	// never surfaced as a query error.
	e.ensure(ctx)

	pair, err := e.providers.ProviderFor(req.OrgID).EmbedQuery(ctx, req.Query)
	if err != nil {
		e.logger.Error(ctx, "query embedding failed, search disabled", zap.Error(err))
		return &Response{Results: []Result{}, Degraded: DegradedDisabled}, nil
	}

	params := vectorstore.QueryParams{
		OrgID:       req.OrgID,
		FileID:      req.FileID,
		ContentType: req.ContentType,
		Limit:       limit * e.opts.Oversample,
	}

	dense, denseErr := e.store.QueryDense(ctx, pair.Dense, params)
	if denseErr != nil {
		e.logger.Error(ctx, "dense query failed, search disabled", zap.Error(denseErr))
		return &Response{Results: []Result{}, Degraded: DegradedDisabled}, nil
	}

	sparse, sparseErr := e.store.QuerySparse(ctx, pair.Sparse, params)
	if sparseErr != nil {
		e.logger.Warn(ctx, "sparse query failed, falling back to dense only", zap.Error(sparseErr))
		return e.denseOnly(dense, limit), nil
	}

	candidates := fuseRRF(e.opts.RRFK, dense, sparse)
	results := make([]Result, 0, limit)
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		results = append(results, toResult(c.Chunk, c.Score))
		if len(results) == limit {
			break
		}
	}
	return &Response{Results: results, Total: len(results)}, nil
}

// denseOnly builds the degraded dense-only response. The raw cosine
// score replaces the fused score, thresholded separately.
func (e *Engine) denseOnly(dense []vectorstore.Candidate, limit int) *Response {
	results := make([]Result, 0, limit)
	for _, c := range dense {
		if c.Score < e.opts.DenseFallbackThreshold {
			continue
		}
		results = append(results, toResult(c.Chunk, c.Score))
		if len(results) == limit {
			break
		}
	}
	return &Response{Results: results, Total: len(results), Degraded: DegradedDenseOnly}
}

func toResult(c chunker.Chunk, score float32) Result {
	metadata := map[string]any{
		"chunk_index": c.ChunkIndex,
		"word_count":  c.WordCount,
	}
	if len(c.Headings) > 0 {
		metadata["headings"] = c.Headings
	}
	if len(c.Keywords) > 0 {
		metadata["keywords"] = c.Keywords
	}
	if c.HasTables {
		metadata["has_tables"] = true
	}
	if c.HasCode {
		metadata["has_code"] = true
	}
	return Result{
		ChunkID:          c.ChunkID,
		FileID:           c.FileID,
		PageNumber:       c.PageNumber,
		Content:          c.Content,
		Score:            score,
		ContentType:      string(c.ContentType),
		Status:           string(c.Status),
		DocURL:           c.DocURL,
		OriginalFilename: c.OriginalFilename,
		Metadata:         metadata,
	}
}
