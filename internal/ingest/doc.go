// Package ingest drives the document indexing pipeline: extract,
// chunk, embed, upsert.
//
// Documents stream through the index in bounded batches so peak memory
// stays flat regardless of document size. Chunk and point ids are
// deterministic, which makes re-ingestion and resume after a canceled
// run idempotent overwrites rather than duplicates.
package ingest
