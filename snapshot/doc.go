// Package snapshot persists compiled graph states to a blobstore.
//
// A snapshot is a single immutable blob named graphs/<uuidv7>.cgs:
//
//	+---------------------------+
//	| header                    |  magic, version, compression, codec,
//	|                           |  block size, raw size, block count, CRC32C
//	+---------------------------+
//	| block 0                   |  [raw u32][stored u32][data]
//	| block 1                   |
//	| ...                       |
//	+---------------------------+
//
// Blocks are compressed with LZ4 or ZSTD and stored raw when compression
// saves less than 10%. The graph payload is encoded with the codec named in
// the header, so readers decode with the writer's codec.
//
// After a snapshot is written, the CURRENT blob is updated to hold its ID.
// With an S3 backend behind blobstore/s3.DDBCommitStore, that update is a
// conditional DynamoDB write.
package snapshot
