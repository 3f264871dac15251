// Package embeddings produces the dense/sparse vector pair for chunks
// and queries.
//
// A Provider generates both vectors for a text unit with one call, so
// the identical method is used at index time and query time. Dense
// vectors come from a pluggable embedder (FastEmbed local ONNX models
// by default); sparse vectors come from a deterministic hashed
// term-frequency scheme.
//
// Providers are injected through an explicit Registry rather than a
// process-global singleton, so tests can swap providers without
// touching module-level state.
package embeddings
