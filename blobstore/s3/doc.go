// Package s3 provides Amazon S3 implementations of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("state/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	states := state.NewStore(store)
//
// # Features
//
//   - CRC32C checksums on every upload
//   - Multipart uploads for large blobs
//   - Automatic pagination for listing
//   - Conditional creates (ExpressStore) and DynamoDB-backed CURRENT
//     pointers (DDBCommitStore) for concurrent writers
package s3
