package extraction

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor supports a configurable format set.
type fakeExtractor struct {
	name    string
	formats map[Format]bool
}

func (f *fakeExtractor) Name() string              { return f.name }
func (f *fakeExtractor) Supports(fmt Format) bool  { return f.formats[fmt] }
func (f *fakeExtractor) Extract(ctx context.Context, r io.Reader, filename string) (*Document, error) {
	return &Document{Format: FormatText, Filename: filename, Pages: []Page{{Number: 1, Text: "fake", Kind: PageKindText}}}, nil
}

func TestRegistryPriorityOrder(t *testing.T) {
	first := &fakeExtractor{name: "first", formats: map[Format]bool{FormatText: true}}
	second := &fakeExtractor{name: "second", formats: map[Format]bool{FormatText: true, FormatPDF: true}}

	reg := NewRegistry(nil, first, second)

	e, err := reg.Extractor(FormatText)
	require.NoError(t, err)
	assert.Equal(t, "first", e.Name())

	e, err = reg.Extractor(FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "second", e.Name())
}

func TestRegistryUnsupportedFormat(t *testing.T) {
	reg := NewRegistry(nil, NewPlainTextExtractor())

	_, err := reg.Extractor(FormatXLSX)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDefaultRegistrySupported(t *testing.T) {
	reg := NewDefaultRegistry(nil)
	supported := reg.Supported()
	assert.Contains(t, supported, FormatPDF)
	assert.Contains(t, supported, FormatText)
	assert.NotContains(t, supported, FormatDOCX)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		hint    string
		want    Format
		wantErr bool
	}{
		{hint: "pdf", want: FormatPDF},
		{hint: ".pdf", want: FormatPDF},
		{hint: "DOCX", want: FormatDOCX},
		{hint: "pptx", want: FormatPPTX},
		{hint: "xlsx", want: FormatXLSX},
		{hint: "csv", want: FormatXLSX},
		{hint: "md", want: FormatText},
		{hint: "exe", wantErr: true},
		{hint: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got, err := ParseFormat(tt.hint)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainTextExtractor(t *testing.T) {
	e := NewPlainTextExtractor()

	t.Run("extracts text", func(t *testing.T) {
		doc, err := e.Extract(context.Background(), strings.NewReader("hello\n\nworld"), "a.txt")
		require.NoError(t, err)
		require.Len(t, doc.Pages, 1)
		assert.Equal(t, "hello\n\nworld", doc.Pages[0].Text)
		assert.Equal(t, PageKindText, doc.Pages[0].Kind)
	})

	t.Run("normalizes CRLF", func(t *testing.T) {
		doc, err := e.Extract(context.Background(), strings.NewReader("a\r\nb"), "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a\nb", doc.Pages[0].Text)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := e.Extract(context.Background(), strings.NewReader("   \n "), "a.txt")
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("rejects binary input", func(t *testing.T) {
		_, err := e.Extract(context.Background(), strings.NewReader("\xff\xfe\x00bad"), "a.bin")
		assert.ErrorIs(t, err, ErrExtraction)
	})
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.Extract(context.Background(), strings.NewReader("not a pdf"), "a.pdf")
	assert.ErrorIs(t, err, ErrExtraction)
}
