package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sentinel errors for extraction operations.
var (
	// ErrExtraction is returned for unreadable or corrupt input.
	// Extraction errors are deterministic and must not be retried.
	ErrExtraction = errors.New("document extraction failed")

	// ErrUnsupportedFormat is returned when no registered extractor
	// supports the document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Format identifies a supported document format.
//
// The set is closed: adding a format means adding a constant here, a
// case to ParseFormat, and a chunking strategy, all of which the
// compiler checks exhaustively.
type Format int

const (
	// FormatUnknown is the zero value; never valid for extraction.
	FormatUnknown Format = iota
	// FormatPDF is a paginated PDF document.
	FormatPDF
	// FormatDOCX is a flowed word-processor document.
	FormatDOCX
	// FormatPPTX is a slide deck.
	FormatPPTX
	// FormatXLSX is a spreadsheet workbook.
	FormatXLSX
	// FormatText is plain or markdown text.
	FormatText
)

// String returns the canonical lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatPPTX:
		return "pptx"
	case FormatXLSX:
		return "xlsx"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseFormat maps a filename extension or explicit type hint to a Format.
func ParseFormat(hint string) (Format, error) {
	h := strings.ToLower(strings.TrimPrefix(hint, "."))
	switch h {
	case "pdf":
		return FormatPDF, nil
	case "docx", "doc":
		return FormatDOCX, nil
	case "pptx", "ppt":
		return FormatPPTX, nil
	case "xlsx", "xls", "csv":
		return FormatXLSX, nil
	case "txt", "text", "md", "markdown":
		return FormatText, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, hint)
	}
}

// FormatFromFilename derives the format from a filename's extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return FormatText, nil
	}
	return ParseFormat(ext)
}

// PageKind describes what a page boundary represents in the source format.
type PageKind string

const (
	// PageKindPage is a physical page (PDF).
	PageKindPage PageKind = "page"
	// PageKindSection is a synthetic section of a flowed document.
	PageKindSection PageKind = "section"
	// PageKindSlide is one slide of a deck.
	PageKindSlide PageKind = "slide"
	// PageKindSheet is one sheet of a workbook.
	PageKindSheet PageKind = "sheet"
	// PageKindText is an unstructured text block.
	PageKindText PageKind = "text"
)

// Page is one ordered unit of extracted text.
type Page struct {
	// Number is the 1-based page/slide/sheet number.
	Number int

	// Text is the raw extracted text, paragraphs separated by blank lines.
	Text string

	// Kind describes the boundary this page represents.
	Kind PageKind

	// Title is the sheet or slide title when the source format carries one.
	Title string
}

// Document is the ordered output of an extractor.
type Document struct {
	// Format is the source document format.
	Format Format

	// Pages are the extracted units in source order.
	Pages []Page

	// Filename is the original filename, when known.
	Filename string
}

// Extractor turns a raw document stream into ordered text.
type Extractor interface {
	// Extract reads the whole document and returns its pages in order.
	// Unreadable or corrupt input fails with ErrExtraction; no partial
	// document is returned.
	Extract(ctx context.Context, r io.Reader, filename string) (*Document, error)

	// Supports reports whether this extractor handles the given format.
	Supports(format Format) bool

	// Name identifies the extractor for startup logging.
	Name() string
}
