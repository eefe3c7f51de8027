// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "survey-catalogs",
//	    s3.WithPrefix("hsc/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	dh := handler.NewBlob(store, os.TempDir())
//
// # Features
//
//   - Range reads for partial fetches
//   - Managed (multipart when large) uploads
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
