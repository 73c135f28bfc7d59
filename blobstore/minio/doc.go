// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// official MinIO Go client library, so it also works against Ceph,
// SeaweedFS, Garage and similar systems.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "state/")
//	states := state.NewStore(store)
//
// Each Put is a single PutObject call, which S3-compatible backends apply
// atomically.
package minio
