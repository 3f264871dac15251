package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const searchInstrumentationName = "github.com/fyrsmithlabs/docsearchd/internal/search"

// Metrics holds all search-related metrics.
type Metrics struct {
	meter       metric.Meter
	logger      *zap.Logger
	duration    metric.Float64Histogram
	resultCount metric.Int64Histogram
	degraded    metric.Int64Counter
}

// NewMetrics creates a new Metrics instance for search.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(searchInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"docsearchd.search.duration_seconds",
		metric.WithDescription("End-to-end hybrid search duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.resultCount, err = m.meter.Int64Histogram(
		"docsearchd.search.result_count",
		metric.WithDescription("Number of results returned per search"),
		metric.WithUnit("{result}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50, 100),
	)
	if err != nil {
		m.logger.Warn("failed to create result count histogram", zap.Error(err))
	}

	m.degraded, err = m.meter.Int64Counter(
		"docsearchd.search.degraded_total",
		metric.WithDescription("Total searches answered by a fallback path, by mode"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		m.logger.Warn("failed to create degraded counter", zap.Error(err))
	}
}

// RecordSearch records one completed search.
func (m *Metrics) RecordSearch(ctx context.Context, degraded string, duration time.Duration, resultCount int) {
	mode := degraded
	if mode == "" {
		mode = "fused"
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.resultCount != nil {
		m.resultCount.Record(ctx, int64(resultCount), attrs)
	}
	if degraded != "" && m.degraded != nil {
		m.degraded.Add(ctx, 1, attrs)
	}
}
