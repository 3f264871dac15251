// Package chunker converts extracted document content into bounded,
// metadata-rich chunks, the atomic units of retrieval.
//
// One strategy exists per document format behind a single interface:
// paginated formats produce one chunk per page or slide, flowed formats
// accumulate paragraphs into synthetic pages, and tabular formats
// produce one chunk per sheet. Oversized content is split at sentence,
// paragraph, or whitespace boundaries with a configurable character
// overlap carried across adjacent pieces.
//
// Chunk identifiers are deterministic over (file_id, page, index), so
// re-chunking identical input yields identical ids and re-indexing
// overwrites in place instead of duplicating.
package chunker
