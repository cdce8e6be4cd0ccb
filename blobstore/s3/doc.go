// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("circuits/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	id, err := snapshot.Save(ctx, store, g)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the SDK upload manager
//   - CRC32C checksums on single-shot puts
//   - DDBCommitStore: DynamoDB conditional writes for the CURRENT pointer,
//     so concurrent writers cannot silently overwrite each other
package s3
