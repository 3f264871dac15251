package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
)

func newTestChunker(t *testing.T, opts Options) *Chunker {
	t.Helper()
	c, err := New(opts, nil)
	require.NoError(t, err)
	return c
}

func textDoc(text string) *extraction.Document {
	return &extraction.Document{
		Format: extraction.FormatText,
		Pages:  []extraction.Page{{Number: 1, Text: text, Kind: extraction.PageKindText}},
	}
}

func TestChunkDocumentValidation(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx := context.Background()

	t.Run("missing file id", func(t *testing.T) {
		_, err := c.ChunkDocument(ctx, textDoc("hello"), Request{OrgID: 1})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("missing org", func(t *testing.T) {
		_, err := c.ChunkDocument(ctx, textDoc("hello"), Request{FileID: "f1"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := c.ChunkDocument(ctx, nil, Request{FileID: "f1", OrgID: 1})
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("whitespace only document", func(t *testing.T) {
		_, err := c.ChunkDocument(ctx, textDoc("   \n\n  "), Request{FileID: "f1", OrgID: 1})
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestChunkDocumentDeterministicIDs(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx := context.Background()
	doc := textDoc(strings.Repeat("A sentence of filler content for the test. ", 300))
	req := Request{FileID: "file-1", OrgID: 1}

	first, err := c.ChunkDocument(ctx, doc, req)
	require.NoError(t, err)
	second, err := c.ChunkDocument(ctx, doc, req)
	require.NoError(t, err)

	require.Equal(t, len(first.Chunks), len(second.Chunks))
	require.Greater(t, len(first.Chunks), 1)
	for i := range first.Chunks {
		assert.Equal(t, first.Chunks[i].ChunkID, second.Chunks[i].ChunkID)
	}

	// A different file id yields different chunk ids.
	other, err := c.ChunkDocument(ctx, doc, Request{FileID: "file-2", OrgID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, first.Chunks[0].ChunkID, other.Chunks[0].ChunkID)
}

func TestChunkDocumentSizeBound(t *testing.T) {
	const max = 500
	c := newTestChunker(t, Options{MaxChunkSize: max, Overlap: 50})
	ctx := context.Background()

	doc := textDoc(strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 200))
	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)

	for _, ch := range result.Chunks {
		assert.LessOrEqual(t, len(ch.Content), max)
		assert.NotEmpty(t, ch.Content)
		assert.Equal(t, StatusActive, ch.Status)
		assert.Equal(t, int64(1), ch.OrgID)
	}
}

func TestChunkDocumentContiguousIndexes(t *testing.T) {
	c := newTestChunker(t, Options{MaxChunkSize: 300, Overlap: 40})
	ctx := context.Background()

	doc := textDoc(strings.Repeat("Content for indexing tests goes here. ", 100))
	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)

	for i, ch := range result.Chunks {
		assert.Equal(t, i, ch.ChunkIndex)
	}
	assert.Equal(t, len(result.Chunks), result.TotalChunks)
}

func TestPagedStrategy(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx := context.Background()

	doc := &extraction.Document{
		Format: extraction.FormatPDF,
		Pages: []extraction.Page{
			{Number: 1, Text: "Page one content.", Kind: extraction.PageKindPage},
			{Number: 2, Text: "", Kind: extraction.PageKindPage}, // scanned page, no text layer
			{Number: 3, Text: "Page three content.", Kind: extraction.PageKindPage},
		},
	}

	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, 1, result.Chunks[0].PageNumber)
	assert.Equal(t, 3, result.Chunks[1].PageNumber)
	assert.Equal(t, ContentTypePage, result.Chunks[0].ContentType)
	assert.Equal(t, 3, result.TotalPages)
}

func TestPagedStrategySplitsOversizedPage(t *testing.T) {
	c := newTestChunker(t, Options{MaxChunkSize: 200, Overlap: 30})
	ctx := context.Background()

	doc := &extraction.Document{
		Format: extraction.FormatPDF,
		Pages: []extraction.Page{
			{Number: 1, Text: strings.Repeat("Words on a long page. ", 50), Kind: extraction.PageKindPage},
		},
	}

	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)

	require.Greater(t, len(result.Chunks), 1)
	for _, ch := range result.Chunks {
		assert.Equal(t, 1, ch.PageNumber, "split pieces stay on the source page")
		assert.LessOrEqual(t, len(ch.Content), 200)
	}
}

func TestFlowedStrategyHeadings(t *testing.T) {
	c := newTestChunker(t, Options{MaxChunkSize: 120, Overlap: 10})
	ctx := context.Background()

	text := "# Security Overview\n\n" +
		"Our platform encrypts data at rest and in transit using strong ciphers everywhere.\n\n" +
		"All backups are stored in geographically separate regions for durability reasons.\n\n" +
		"# Support\n\n" +
		"Support is available around the clock through phone and email channels worldwide."

	doc := &extraction.Document{
		Format: extraction.FormatDOCX,
		Pages:  []extraction.Page{{Number: 1, Text: text, Kind: extraction.PageKindSection}},
	}

	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Chunks), 2)

	assert.Contains(t, result.Chunks[0].Headings, "Security Overview")
	last := result.Chunks[len(result.Chunks)-1]
	assert.Contains(t, last.Headings, "Support")
	assert.Equal(t, ContentTypeSection, last.ContentType)

	// Synthetic page counter advances per flush.
	for i := 1; i < len(result.Chunks); i++ {
		assert.Greater(t, result.Chunks[i].PageNumber, result.Chunks[i-1].PageNumber)
	}
}

func TestTabularStrategy(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx := context.Background()

	doc := &extraction.Document{
		Format: extraction.FormatXLSX,
		Pages: []extraction.Page{
			{Number: 1, Title: "Q1", Text: "region\trevenue\nEMEA\t100\nAPAC\t200", Kind: extraction.PageKindSheet},
			{Number: 2, Title: "Q2", Text: "region\trevenue\nEMEA\t150", Kind: extraction.PageKindSheet},
		},
	}

	result, err := c.ChunkDocument(ctx, doc, Request{FileID: "f1", OrgID: 1})
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.True(t, result.Chunks[0].HasTables)
	assert.Equal(t, ContentTypeSheet, result.Chunks[0].ContentType)
	assert.Contains(t, result.Chunks[0].Content, "EMEA | 100")
	assert.Equal(t, []string{"Q1"}, result.Chunks[0].Headings)
}

func TestChunkDocumentMetadataPassThrough(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx := context.Background()

	result, err := c.ChunkDocument(ctx, textDoc("Some short document body."), Request{
		FileID:           "f1",
		OrgID:            9,
		DocURL:           "https://files.example.com/f1",
		OriginalFilename: "policy.txt",
	})
	require.NoError(t, err)

	require.Len(t, result.Chunks, 1)
	ch := result.Chunks[0]
	assert.Equal(t, "https://files.example.com/f1", ch.DocURL)
	assert.Equal(t, "policy.txt", ch.OriginalFilename)
	assert.Equal(t, "policy.txt", result.Metadata.OriginalFilename)
	assert.Positive(t, ch.WordCount)
	assert.Positive(t, ch.CharCount)
}

func TestChunkDocumentCancellation(t *testing.T) {
	c := newTestChunker(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ChunkDocument(ctx, textDoc("content"), Request{FileID: "f1", OrgID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
