package chunker

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
)

// tabularStrategy handles spreadsheets: one chunk per sheet with rows
// serialized as delimiter-joined lines and has_tables always set.
type tabularStrategy struct {
	max     int
	overlap int
}

func (s *tabularStrategy) chunk(ctx context.Context, doc *extraction.Document, b *builder) error {
	for _, sheet := range doc.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text := serializeRows(sheet.Text)
		if text == "" {
			continue
		}

		var headings []string
		if sheet.Title != "" {
			headings = []string{sheet.Title}
		}

		for _, piece := range splitText(text, s.max, s.overlap) {
			b.add(piece, sheet.Number, headings, true)
		}
	}
	return nil
}

// serializeRows normalizes extracted sheet rows into " | "-joined lines.
// Extractors emit one row per line with cells separated by tabs.
func serializeRows(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}
