package extraction

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// maxDocumentSize bounds how much of a document is read into memory.
const maxDocumentSize = 64 * 1024 * 1024 // 64MB

// PlainTextExtractor extracts plain text and markdown documents.
//
// The whole document becomes a single text page; the chunker's flowed
// strategy is responsible for section splitting.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Name identifies the extractor for startup logging.
func (e *PlainTextExtractor) Name() string { return "plaintext" }

// Supports reports whether this extractor handles the given format.
func (e *PlainTextExtractor) Supports(format Format) bool {
	return format == FormatText
}

// Extract reads the whole stream as UTF-8 text.
func (e *PlainTextExtractor) Extract(ctx context.Context, r io.Reader, filename string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %v", ErrExtraction, err)
	}
	if len(content) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrExtraction, maxDocumentSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8 text", ErrExtraction)
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document is empty", ErrExtraction)
	}

	return &Document{
		Format:   FormatText,
		Filename: filename,
		Pages: []Page{
			{Number: 1, Text: text, Kind: PageKindText},
		},
	}, nil
}

var _ Extractor = (*PlainTextExtractor)(nil)
