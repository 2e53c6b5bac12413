// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
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
//	store := minioblob.NewStore(client, "my-bucket", "collections")
//	b, err := remote.New(ctx, "books", remote.WithBlobStore(store, true))
//	da := docarray.New(b)
//
// Blobs are stored under "<rootPrefix>/<name>". Large payloads are
// streamed with PutObject; unknown sizes use multipart upload.
package minio
