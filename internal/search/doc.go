// Package search implements hybrid retrieval over the vector index.
//
// A query is embedded once into a dense and a sparse vector, both
// spaces are searched under the identical tenant filter, and the two
// ranked lists are merged with reciprocal rank fusion. When part of
// the pipeline fails the engine degrades in order, fused to dense-only
// to disabled, and tags the response so callers can tell zero matches
// from a degraded search.
package search
