package chunker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
)

// Sentinel errors for chunking operations.
var (
	// ErrEmptyDocument indicates a document with no chunkable text.
	ErrEmptyDocument = errors.New("document has no chunkable content")

	// ErrInvalidRequest indicates a missing file id or tenant.
	ErrInvalidRequest = errors.New("invalid chunking request")
)

// Options holds chunker configuration.
type Options struct {
	// MaxChunkSize is the maximum chunk content length in bytes.
	// Default: 3000.
	MaxChunkSize int `koanf:"max_chunk_size"`

	// Overlap is the number of bytes carried from the end of each split
	// piece into the start of the next. Default: 200.
	Overlap int `koanf:"overlap"`
}

// ApplyDefaults sets default values for unset fields.
func (o *Options) ApplyDefaults() {
	if o.MaxChunkSize == 0 {
		o.MaxChunkSize = 3000
	}
	if o.Overlap == 0 {
		o.Overlap = 200
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.MaxChunkSize < 100 {
		return fmt.Errorf("%w: max_chunk_size must be at least 100, got %d", ErrInvalidRequest, o.MaxChunkSize)
	}
	if o.Overlap < 0 || o.Overlap >= o.MaxChunkSize/2 {
		return fmt.Errorf("%w: overlap must be in [0, max_chunk_size/2), got %d", ErrInvalidRequest, o.Overlap)
	}
	return nil
}

// strategy converts one extracted document into chunks.
type strategy interface {
	chunk(ctx context.Context, doc *extraction.Document, b *builder) error
}

// Chunker converts extracted documents into bounded chunks.
type Chunker struct {
	opts   Options
	logger *logging.Logger
}

// New creates a Chunker with the given options.
func New(opts Options, logger *logging.Logger) (*Chunker, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chunker{opts: opts, logger: logger.Named("chunker")}, nil
}

// strategyFor binds each format to its chunking strategy. The switch is
// exhaustive over the closed format set.
func strategyFor(format extraction.Format, max, overlap int) (strategy, error) {
	switch format {
	case extraction.FormatPDF:
		return &pagedStrategy{max: max, overlap: overlap, contentType: ContentTypePage}, nil
	case extraction.FormatPPTX:
		return &pagedStrategy{max: max, overlap: overlap, contentType: ContentTypeSlide}, nil
	case extraction.FormatDOCX:
		return &flowedStrategy{max: max, overlap: overlap, contentType: ContentTypeSection}, nil
	case extraction.FormatText:
		return &flowedStrategy{max: max, overlap: overlap, contentType: ContentTypeText}, nil
	case extraction.FormatXLSX:
		return &tabularStrategy{max: max, overlap: overlap}, nil
	case extraction.FormatUnknown:
		return nil, fmt.Errorf("%w: unknown format", extraction.ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %s", extraction.ErrUnsupportedFormat, format)
	}
}

// ChunkDocument converts an extracted document into bounded chunks.
//
// The returned chunks are in page order with contiguous 0-based chunk
// indexes and deterministic ids. No chunks are returned on error.
func (c *Chunker) ChunkDocument(ctx context.Context, doc *extraction.Document, req Request) (*Result, error) {
	start := time.Now()

	if req.FileID == "" {
		return nil, fmt.Errorf("%w: file id required", ErrInvalidRequest)
	}
	if req.OrgID <= 0 {
		return nil, fmt.Errorf("%w: org id required", ErrInvalidRequest)
	}
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}

	max := c.opts.MaxChunkSize
	if req.MaxChunkSize > 0 {
		max = req.MaxChunkSize
	}

	strat, err := strategyFor(doc.Format, max, c.opts.Overlap)
	if err != nil {
		return nil, err
	}

	b := &builder{req: req, contentType: contentTypeFor(doc.Format)}
	if err := strat.chunk(ctx, doc, b); err != nil {
		return nil, err
	}
	if len(b.chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	result := &Result{
		Chunks:      b.chunks,
		TotalPages:  b.maxPage,
		TotalChunks: len(b.chunks),
		Metadata: DocumentMetadata{
			Format:           doc.Format.String(),
			OriginalFilename: req.OriginalFilename,
			DocURL:           req.DocURL,
			ExtractedPages:   len(doc.Pages),
		},
		ProcessingTime: time.Since(start),
	}
	for _, ch := range result.Chunks {
		result.TotalWords += ch.WordCount
		result.TotalChars += ch.CharCount
	}

	c.logger.Debug(ctx, "document chunked",
		zap.String("file_id", req.FileID),
		zap.String("format", doc.Format.String()),
		zap.Int("chunks", result.TotalChunks),
		zap.Int("pages", result.TotalPages),
		zap.Duration("took", result.ProcessingTime),
	)

	return result, nil
}

// builder accumulates chunks with contiguous indexes and shared request
// metadata.
type builder struct {
	req         Request
	contentType ContentType
	chunks      []Chunk
	maxPage     int
}

// add appends a chunk for content on the given page, computing the
// deterministic id, counts, and detection flags. Empty content is
// silently dropped.
func (b *builder) add(content string, page int, headings []string, hasTables bool) {
	if trimOuterSpace(content) == "" {
		return
	}
	index := len(b.chunks)
	var headingsCopy []string
	if len(headings) > 0 {
		headingsCopy = append([]string(nil), headings...)
	}
	b.chunks = append(b.chunks, Chunk{
		ChunkID:          ChunkID(b.req.FileID, page, index),
		FileID:           b.req.FileID,
		PageNumber:       page,
		ChunkIndex:       index,
		Content:          content,
		ContentType:      b.contentType,
		WordCount:        countWords(content),
		CharCount:        countChars(content),
		SentenceCount:    countSentences(content),
		HasTables:        hasTables || hasTableMarkers(content),
		HasCode:          hasCode(content),
		Headings:         headingsCopy,
		Keywords:         extractKeywords(content),
		Status:           StatusActive,
		OrgID:            b.req.OrgID,
		DocURL:           b.req.DocURL,
		OriginalFilename: b.req.OriginalFilename,
	})
	if page > b.maxPage {
		b.maxPage = page
	}
}
