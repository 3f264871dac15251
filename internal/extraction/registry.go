package extraction

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsearchd/internal/logging"
)

// Registry selects an extractor per format from a static, ordered
// provider list.
//
// The mapping is computed once at construction and logged once. There
// is no per-call capability probing: an unsupported format fails
// immediately with ErrUnsupportedFormat.
type Registry struct {
	byFormat map[Format]Extractor
	logger   *logging.Logger
}

// allFormats enumerates the closed format set for registry construction.
var allFormats = []Format{FormatPDF, FormatDOCX, FormatPPTX, FormatXLSX, FormatText}

// NewRegistry builds a registry from extractors in priority order: the
// first extractor supporting a format wins.
func NewRegistry(logger *logging.Logger, extractors ...Extractor) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("extraction")

	byFormat := make(map[Format]Extractor)
	for _, format := range allFormats {
		for _, e := range extractors {
			if e.Supports(format) {
				byFormat[format] = e
				break
			}
		}
	}

	for _, format := range allFormats {
		if e, ok := byFormat[format]; ok {
			logger.Info(context.Background(), "extractor selected",
				zap.String("format", format.String()),
				zap.String("extractor", e.Name()),
			)
		}
	}

	return &Registry{byFormat: byFormat, logger: logger}
}

// NewDefaultRegistry builds a registry with the built-in extractors.
func NewDefaultRegistry(logger *logging.Logger) *Registry {
	return NewRegistry(logger,
		NewPDFExtractor(),
		NewPlainTextExtractor(),
	)
}

// Extractor returns the extractor bound to the given format.
func (r *Registry) Extractor(format Format) (Extractor, error) {
	e, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s", ErrUnsupportedFormat, format)
	}
	return e, nil
}

// Supported returns the formats the registry can extract.
func (r *Registry) Supported() []Format {
	formats := make([]Format, 0, len(r.byFormat))
	for _, f := range allFormats {
		if _, ok := r.byFormat[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// Extract resolves the extractor for the format and runs it.
func (r *Registry) Extract(ctx context.Context, format Format, src io.Reader, filename string) (*Document, error) {
	e, err := r.Extractor(format)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, src, filename)
}
