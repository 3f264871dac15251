// Package extraction turns raw uploaded documents into ordered text
// with page, slide, and sheet boundaries preserved.
//
// Extractors are format-specific and selected once at startup through a
// Registry built from a static, ordered provider list. Each extractor
// reports which formats it supports; the registry logs the selected
// mapping and is never probed per call.
//
// Extraction failures are deterministic (corrupt input stays corrupt),
// so callers must not retry them.
package extraction
