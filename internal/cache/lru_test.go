package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/docarray/resource"
)

func blobKey(path string, off uint64) CacheKey {
	return CacheKey{Kind: CacheKindBlob, Path: path, Offset: off}
}

func TestLRU_EdgeCases(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(50, rc)
	ctx := context.Background()
	k := blobKey("docs/a", 1)

	// Larger than capacity: never cached.
	c.Set(ctx, k, make([]byte, 60))
	_, ok := c.Get(ctx, k)
	assert.False(t, ok)

	c.Set(ctx, k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(ctx, k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set(ctx, k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	rc2 := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c2 := NewLRUBlockCache(50, rc2)
	c2.Set(ctx, k, make([]byte, 8))
	c2.Set(ctx, k, make([]byte, 12))

	val, ok := c2.Get(ctx, k)
	assert.True(t, ok)
	assert.Len(t, val, 8, "update should have been rejected by the controller")
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRUBlockCache(10, nil)
	ctx := context.Background()

	c.Set(ctx, blobKey("a", 0), make([]byte, 4))
	c.Set(ctx, blobKey("a", 1), make([]byte, 4))
	c.Get(ctx, blobKey("a", 0))
	c.Set(ctx, blobKey("a", 2), make([]byte, 4))

	_, ok := c.Get(ctx, blobKey("a", 1))
	assert.False(t, ok, "least recently used block is evicted")
	_, ok = c.Get(ctx, blobKey("a", 0))
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(8), c.Size())
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRUBlockCache(100, nil)
	ctx := context.Background()
	k := blobKey("a", 1)
	c.Set(ctx, k, []byte{1})
	c.Get(ctx, k)
	c.Get(ctx, blobKey("b", 2))

	st := c.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.Blocks)
	assert.Equal(t, int64(1), st.Bytes)
	assert.Zero(t, st.Evictions)
}

func TestLRU_Invalidate(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewLRUBlockCache(100, rc)
	ctx := context.Background()
	c.Set(ctx, blobKey("a", 1), []byte("a"))
	c.Set(ctx, blobKey("a", 2), []byte("b"))
	c.Set(ctx, blobKey("b", 1), []byte("c"))

	c.Invalidate(func(k CacheKey) bool { return k.Path == "a" })

	_, ok := c.Get(ctx, blobKey("a", 1))
	assert.False(t, ok)
	_, ok = c.Get(ctx, blobKey("b", 1))
	assert.True(t, ok)
	assert.Equal(t, int64(1), rc.MemoryUsage())

	assert.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestLRU_InvalidatePath(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewLRUBlockCache(100, rc)
	ctx := context.Background()
	for off := range uint64(3) {
		c.Set(ctx, blobKey("docs/a", off), []byte("xx"))
	}
	c.Set(ctx, blobKey("docs/b", 0), []byte("y"))
	c.Set(ctx, CacheKey{Kind: CacheKindUnknown, Path: "docs/a"}, []byte("z"))

	c.InvalidatePath(CacheKindBlob, "docs/a")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(2), rc.MemoryUsage())

	_, ok := c.Get(ctx, blobKey("docs/b", 0))
	assert.True(t, ok)
	_, ok = c.Get(ctx, CacheKey{Kind: CacheKindUnknown, Path: "docs/a"})
	assert.True(t, ok)

	// Invalidating twice or an unknown path is a no-op.
	c.InvalidatePath(CacheKindBlob, "docs/a")
	c.InvalidatePath(CacheKindBlob, "docs/zz")
	assert.Equal(t, 2, c.Len())
}
