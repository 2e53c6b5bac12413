package cache

import "context"

// CacheKind separates key spaces sharing one cache.
type CacheKind uint8

const (
	CacheKindUnknown CacheKind = iota
	// CacheKindBlob holds blocks of blobstore blobs (document frames and
	// offset2id versions).
	CacheKindBlob
)

// CacheKey identifies one cached block.
type CacheKey struct {
	Kind CacheKind
	// Path is the blob name.
	Path string
	// Offset is the block index within the blob.
	Offset uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Blocks    int
	Bytes     int64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches b. The cache retains b; callers must not modify it.
	Set(ctx context.Context, key CacheKey, b []byte)
	// InvalidatePath drops every block of the blob path.
	InvalidatePath(kind CacheKind, path string)
	// Invalidate drops the blocks matching predicate.
	Invalidate(predicate func(key CacheKey) bool)
	Stats() Stats
	Close() error
}
