package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Context key types
type orgCtxKey struct{}
type fileCtxKey struct{}
type requestCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	// Tenant context
	if orgID, ok := OrgIDFromContext(ctx); ok {
		fields = append(fields, zap.Int64("org_id", orgID))
	}

	// Document context
	if fileID := FileIDFromContext(ctx); fileID != "" {
		fields = append(fields, zap.String("file_id", fileID))
	}

	// Request ID
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	return fields
}

// ContextWithOrgID attaches the owning tenant to the context.
func ContextWithOrgID(ctx context.Context, orgID int64) context.Context {
	return context.WithValue(ctx, orgCtxKey{}, orgID)
}

// OrgIDFromContext retrieves the tenant from the context.
func OrgIDFromContext(ctx context.Context) (int64, bool) {
	orgID, ok := ctx.Value(orgCtxKey{}).(int64)
	return orgID, ok
}

// ContextWithFileID attaches a document identifier to the context.
func ContextWithFileID(ctx context.Context, fileID string) context.Context {
	return context.WithValue(ctx, fileCtxKey{}, fileID)
}

// FileIDFromContext retrieves the document identifier from the context.
func FileIDFromContext(ctx context.Context) string {
	fileID, _ := ctx.Value(fileCtxKey{}).(string)
	return fileID
}

// ContextWithRequestID attaches a request identifier to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext retrieves the request identifier from the context.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestCtxKey{}).(string)
	return requestID
}
