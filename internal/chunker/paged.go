package chunker

import (
	"context"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
)

// pagedStrategy handles formats with real page boundaries: one chunk
// per page or slide, oversized pages split with overlap.
type pagedStrategy struct {
	max         int
	overlap     int
	contentType ContentType
}

func (s *pagedStrategy) chunk(ctx context.Context, doc *extraction.Document, b *builder) error {
	for _, page := range doc.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text := trimOuterSpace(page.Text)
		if text == "" {
			// Scanned or image-only pages carry no text layer.
			continue
		}

		var headings []string
		if page.Title != "" {
			headings = []string{page.Title}
		}

		for _, piece := range splitText(text, s.max, s.overlap) {
			b.add(piece, page.Number, headings, false)
		}
	}
	return nil
}
