// Package blobstore stores the named blobs behind remote document
// collections: one codec frame per document plus the versioned offset2id
// lists and their CURRENT pointer.
//
// Stores must be safe for concurrent use. Put and Create publish a blob
// atomically; readers never observe a half-written document.
//
// Implementations in this module:
//
//   - MemoryStore keeps blobs in process (tests, non-persistent collections)
//   - LocalStore writes files below a root directory under a flock
//   - PrefixStore scopes any store to one collection namespace
//   - CachingStore adds a block cache in front of a slow store
//   - minio.Store and s3.Store talk to object storage
//   - s3.DDBCommitStore keeps CURRENT pointers in DynamoDB
//
// Stores that can remove many blobs per request implement BatchDeleter;
// DeleteAll uses it when present.
package blobstore
