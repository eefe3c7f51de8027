// Package minio provides a blobstore.BlobStore backed by the MinIO client.
//
// It works with MinIO and other S3-compatible systems (Ceph, SeaweedFS,
// Garage) without pulling in the AWS SDK.
//
//	store, err := minio.Dial("localhost:9000", "catalogs",
//	    minio.WithCredentials("minioadmin", "minioadmin"),
//	    minio.WithPrefix("hsc/"),
//	)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
