// Package blobstore provides storage abstraction for persisted pipeline state.
//
// Store is the interface for reading and writing whole blobs under
// slash-separated names. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory map, for tests
//   - LocalStore: local filesystem with atomic temp-file-and-rename writes
//   - LimitedStore: wraps any Store with concurrency and throughput limits
//   - minio.Store: MinIO / S3-compatible object storage
//   - s3.Store: Amazon S3, with s3.DDBCommitStore for conditional commits
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error            // Missing blobs are not an error
//	    List(ctx, prefix) ([]string, error) // Sorted
//	}
package blobstore
