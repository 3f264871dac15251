// Package vectorstore provides the hybrid vector index backing document
// retrieval.
//
// The store keeps two named vector spaces per point, a dense semantic
// vector and a sparse lexical vector, and enforces tenant isolation by
// attaching a mandatory org_id filter to every read and delete. Two
// implementations are provided: QdrantStore over the native gRPC client
// for production, and MemoryStore for tests and offline development.
package vectorstore
