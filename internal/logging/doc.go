// Package logging provides structured logging for docsearchd.
//
// It wraps zap with context-aware methods so that tenant and document
// correlation fields (org_id, file_id, request id) flow automatically
// from context.Context into every log entry. Components obtain child
// loggers via Named/With rather than constructing their own.
package logging
