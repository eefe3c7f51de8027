// Package blobstore provides storage for catalog blobs read by the blob data
// handler.
//
// A BlobStore holds immutable named blobs (catalogs, compressed catalogs and
// their schema sidecars). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through a read-only mmap
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Remote blobs are read with ReadRange; ReadAll picks the cheapest path for
// a whole blob:
//
//	data, err := blobstore.ReadAll(ctx, store, "visit-42.dat.zst")
package blobstore
