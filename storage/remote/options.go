package remote

import (
	"github.com/hupe1980/docarray/blobstore"
	"github.com/hupe1980/docarray/codec"
	"github.com/hupe1980/docarray/resource"
	"github.com/hupe1980/docarray/storage"
)

// Options configures a remote Store.
type Options struct {
	// BlobStore holds the collection. Default: a fresh blobstore.MemoryStore.
	BlobStore blobstore.BlobStore

	// Persist keeps the blobs after the last Close. Collections on the
	// default in-memory store are never persistent.
	Persist bool

	// Frame encodes stored documents.
	Frame codec.Frame

	// Controller limits concurrent requests, request rate and IO. Default:
	// no limits.
	Controller *resource.Controller

	// Parallelism bounds the fan-out of GetMany, Put and Delete.
	Parallelism int

	// ScanBatchSize is the number of documents fetched per Scan round trip.
	ScanBatchSize int

	// CacheBytes enables a block cache of the given size in front of the
	// blob store.
	CacheBytes int64

	// KeepVersions is the number of offset2id versions kept besides the
	// current one.
	KeepVersions int

	// Storage configures the storage.Base built by New.
	Storage []func(*storage.Options)
}

// DefaultOptions contains the default remote options.
var DefaultOptions = Options{
	Frame:         codec.NewFrame(func(f *codec.Frame) { f.Compression = codec.CompressionZSTD }),
	Parallelism:   16,
	ScanBatchSize: 64,
	KeepVersions:  1,
}

// WithBlobStore sets the blob store and whether the collection persists
// after the last Close.
func WithBlobStore(store blobstore.BlobStore, persist bool) func(*Options) {
	return func(o *Options) {
		o.BlobStore = store
		o.Persist = persist
	}
}

// WithController sets the resource controller.
func WithController(rc *resource.Controller) func(*Options) {
	return func(o *Options) { o.Controller = rc }
}

// WithCache enables a block cache of size bytes.
func WithCache(bytes int64) func(*Options) {
	return func(o *Options) { o.CacheBytes = bytes }
}

// WithStorageOptions forwards options to storage.Open.
func WithStorageOptions(optFns ...func(*storage.Options)) func(*Options) {
	return func(o *Options) { o.Storage = append(o.Storage, optFns...) }
}

// WithFrame sets the frame used to encode documents.
func WithFrame(f codec.Frame) func(*Options) {
	return func(o *Options) { o.Frame = f }
}

// WithParallelism bounds the number of concurrent blob requests per call.
func WithParallelism(n int) func(*Options) {
	return func(o *Options) { o.Parallelism = n }
}
