package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts page-bounded text from PDF documents.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Name identifies the extractor for startup logging.
func (e *PDFExtractor) Name() string { return "pdf" }

// Supports reports whether this extractor handles the given format.
func (e *PDFExtractor) Supports(format Format) bool {
	return format == FormatPDF
}

// Extract parses the PDF and returns one page per physical page.
// Pages whose text layer is empty (scanned images) are kept with empty
// text so page numbering stays aligned with the source; the chunker
// drops them.
func (e *PDFExtractor) Extract(ctx context.Context, r io.Reader, filename string) (*Document, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %v", ErrExtraction, err)
	}
	if len(content) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrExtraction, maxDocumentSize)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing pdf: %v", ErrExtraction, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrExtraction)
	}

	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i, Kind: PageKindPage})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page corrupts the whole extraction:
			// partial documents are never committed.
			return nil, fmt.Errorf("%w: extracting page %d: %v", ErrExtraction, i, err)
		}

		pages = append(pages, Page{
			Number: i,
			Text:   strings.TrimSpace(text),
			Kind:   PageKindPage,
		})
	}

	return &Document{
		Format:   FormatPDF,
		Filename: filename,
		Pages:    pages,
	}, nil
}

var _ Extractor = (*PDFExtractor)(nil)
