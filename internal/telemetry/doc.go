// Package telemetry provides OpenTelemetry instrumentation for docsearchd.
//
// # Overview
//
// This package wires distributed tracing and metrics collection through the
// OpenTelemetry Go SDK. Spans and metrics are exported over OTLP to a
// collector; the search engine, ingest pipeline, vector store, and HTTP
// layer all instrument against the global providers this package installs.
//
// # Usage
//
// Create a telemetry instance during startup:
//
//	tel, err := telemetry.New(ctx, &cfg.Telemetry)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
// Instrumented packages obtain tracers and meters from the otel globals:
//
//	tracer := otel.Tracer("docsearchd.search")
//	ctx, span := tracer.Start(ctx, "engine.search")
//	defer span.End()
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  service_name: "docsearchd"
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// # Error Handling
//
// Telemetry failures never crash the daemon. When a provider cannot be
// initialized the instance degrades to no-op providers and search and
// ingestion continue uninstrumented.
//
// # Testing
//
// Use TestTelemetry in tests:
//
//	tt := telemetry.NewTestTelemetry()
//	tracer := tt.Tracer("test")
//	_, span := tracer.Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
