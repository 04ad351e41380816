// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	client, err := s3.NewClient(ctx, s3.ClientConfig{Region: "eu-central-1"})
//	store := s3.NewStore(client, "my-bucket", "models/")
//
// # Features
//
//   - Range reads for partial fetches
//   - Managed multipart uploads for large models
//   - CRC32C integrity checks on single-request writes
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
