package chunker

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
)

// flowedStrategy handles word-processor documents and plain text:
// paragraphs accumulate into a buffer that flushes into a chunk once it
// would exceed the size budget, advancing a synthetic page counter.
//
// The most recent heading-styled paragraphs are tracked and attached to
// each flushed chunk as metadata.
type flowedStrategy struct {
	max         int
	overlap     int
	contentType ContentType
}

func (s *flowedStrategy) chunk(ctx context.Context, doc *extraction.Document, b *builder) error {
	page := 0
	var buf strings.Builder
	var headings []string

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		page++
		b.add(buf.String(), page, headings, false)
		buf.Reset()
	}

	for _, p := range doc.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, paragraph := range strings.Split(p.Text, "\n\n") {
			paragraph = trimOuterSpace(paragraph)
			if paragraph == "" {
				continue
			}

			if isHeading(paragraph) {
				headings = append(headings, headingText(paragraph))
				if len(headings) > maxTrackedHeadings {
					headings = headings[len(headings)-maxTrackedHeadings:]
				}
			}

			// A single paragraph over the budget is split on its own;
			// the buffer flushes first to preserve paragraph order.
			if len(paragraph) > s.max {
				flush()
				for _, piece := range splitText(paragraph, s.max, s.overlap) {
					page++
					b.add(piece, page, headings, false)
				}
				continue
			}

			if buf.Len() > 0 && buf.Len()+len(paragraph)+2 > s.max {
				flush()
			}
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(paragraph)
		}
	}
	flush()
	return nil
}
