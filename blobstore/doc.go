// Package blobstore provides the storage abstraction behind graph snapshots.
//
// A BlobStore holds immutable snapshot blobs under graphs/ and a small
// CURRENT blob naming the latest one. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and dry runs
//   - LocalStore: local filesystem, mmap reads and rename-on-close writes
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with a DynamoDB
//     commit log for CURRENT
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
// Implement BlobStore to support other backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
