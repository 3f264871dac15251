package chunker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
)

// ContentType describes the boundary a chunk was cut on.
type ContentType string

const (
	// ContentTypePage is one physical PDF page.
	ContentTypePage ContentType = "page"
	// ContentTypeSection is a synthetic section of a flowed document.
	ContentTypeSection ContentType = "section"
	// ContentTypeSlide is one slide of a deck.
	ContentTypeSlide ContentType = "slide"
	// ContentTypeSheet is one sheet of a workbook.
	ContentTypeSheet ContentType = "sheet"
	// ContentTypeText is an unstructured text block.
	ContentTypeText ContentType = "text"
)

// Status is the lifecycle state of a chunk.
type Status string

const (
	// StatusActive chunks are queryable.
	StatusActive Status = "active"
	// StatusDeleted chunks are soft-deleted and excluded from queries.
	StatusDeleted Status = "deleted"
	// StatusArchived chunks are retained but excluded from queries.
	StatusArchived Status = "archived"
)

// chunkIDNamespace is the fixed UUIDv5 namespace for chunk identifiers.
// Changing it invalidates every previously indexed chunk id.
var chunkIDNamespace = uuid.MustParse("8b1a7c6e-2f54-4d8a-9c1b-6a0d3f5e7b92")

// ChunkID derives the deterministic identifier for a chunk position.
// Identical (fileID, page, index) always yields the identical id, which
// makes re-ingestion overwrite rather than duplicate.
func ChunkID(fileID string, page, index int) string {
	return uuid.NewSHA1(chunkIDNamespace, []byte(fmt.Sprintf("%s:%d:%d", fileID, page, index))).String()
}

// Chunk is a bounded unit of document text with position metadata.
type Chunk struct {
	// ChunkID is deterministic over (FileID, PageNumber, ChunkIndex).
	ChunkID string `json:"chunk_id"`

	// FileID identifies the parent document.
	FileID string `json:"file_id"`

	// PageNumber is the 1-based page/slide/sheet number. Synthetic for
	// flowed formats.
	PageNumber int `json:"page_number"`

	// ChunkIndex is the 0-based position of this chunk in the document.
	ChunkIndex int `json:"chunk_index"`

	// Content is the chunk text. Never empty; its length never exceeds
	// the configured maximum.
	Content string `json:"content"`

	// ContentType describes the boundary this chunk was cut on.
	ContentType ContentType `json:"content_type"`

	WordCount     int `json:"word_count"`
	CharCount     int `json:"char_count"`
	SentenceCount int `json:"sentence_count"`

	HasTables bool `json:"has_tables"`
	HasImages bool `json:"has_images"`
	HasCode   bool `json:"has_code"`

	// Headings are the most recent heading-styled paragraphs preceding
	// this chunk.
	Headings []string `json:"headings,omitempty"`

	// Keywords are approximate capitalized-token/acronym extractions.
	Keywords []string `json:"keywords,omitempty"`

	// Status is the lifecycle state; chunks are created active.
	Status Status `json:"status"`

	// OrgID is the owning tenant. Zero is invalid at index time.
	OrgID int64 `json:"org_id"`

	// DocURL and OriginalFilename are pass-through document metadata.
	DocURL           string `json:"doc_url,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

// DocumentMetadata summarizes the chunked document.
type DocumentMetadata struct {
	Format           string `json:"format"`
	OriginalFilename string `json:"original_filename,omitempty"`
	DocURL           string `json:"doc_url,omitempty"`
	ExtractedPages   int    `json:"extracted_pages"`
}

// Result is the output of chunking one document.
type Result struct {
	Chunks         []Chunk          `json:"chunks"`
	TotalPages     int              `json:"total_pages"`
	TotalChunks    int              `json:"total_chunks"`
	TotalWords     int              `json:"total_words"`
	TotalChars     int              `json:"total_chars"`
	Metadata       DocumentMetadata `json:"document_metadata"`
	ProcessingTime time.Duration    `json:"processing_time"`
}

// Request carries per-document chunking parameters.
type Request struct {
	// FileID identifies the document; required.
	FileID string

	// OrgID is the owning tenant; required.
	OrgID int64

	// DocURL and OriginalFilename are carried into every chunk.
	DocURL           string
	OriginalFilename string

	// MaxChunkSize overrides the chunker's configured maximum when > 0.
	MaxChunkSize int
}

// contentTypeFor maps a source format to the chunk content type.
func contentTypeFor(format extraction.Format) ContentType {
	switch format {
	case extraction.FormatPDF:
		return ContentTypePage
	case extraction.FormatDOCX:
		return ContentTypeSection
	case extraction.FormatPPTX:
		return ContentTypeSlide
	case extraction.FormatXLSX:
		return ContentTypeSheet
	default:
		return ContentTypeText
	}
}
