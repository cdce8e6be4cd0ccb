// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible servers (Ceph, SeaweedFS,
// Garage) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Connect(ctx, minio.Config{
//	    Endpoint:     "localhost:9000",
//	    AccessKey:    "minioadmin",
//	    SecretKey:    "minioadmin",
//	    Bucket:       "circuits",
//	    Prefix:       "graphs-v1/",
//	    CreateBucket: true,
//	})
//
//	id, err := snapshot.Save(ctx, store, g)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
