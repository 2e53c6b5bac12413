// Package s3 implements blobstore.BlobStore on Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("collections"), s3.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//	b, err := remote.New(ctx, "books", remote.WithBlobStore(store, true))
//
// Reads use ranged GetObject calls. Small blobs are written with one
// PutObject carrying a CRC32C checksum, large ones with the multipart
// uploader. DeleteMany batches up to 1000 keys per DeleteObjects request.
//
// S3 has no compare-and-swap, so concurrent writers of one collection
// should wrap the store in a DDBCommitStore, which moves the offset2id
// CURRENT pointer into a DynamoDB item updated with conditional writes.
package s3
