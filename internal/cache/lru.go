package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/hupe1980/docarray/resource"
)

type pathKey struct {
	kind CacheKind
	path string
}

type entry struct {
	key   CacheKey
	value []byte
}

// LRUBlockCache is a size-bounded LRU BlockCache. Blocks are indexed by blob
// path as well, so rewriting one document blob drops only its own blocks.
//
// Memory is charged to an optional resource.Controller; a block the
// controller refuses is simply not cached.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	order    *list.List
	items    map[CacheKey]*list.Element
	byPath   map[pathKey]map[uint64]*list.Element
	rc       *resource.Controller

	hits, misses, evictions int64
}

var _ BlockCache = (*LRUBlockCache)(nil)

// NewLRUBlockCache creates a cache holding at most capacity bytes.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[CacheKey]*list.Element),
		byPath:   make(map[pathKey]map[uint64]*list.Element),
		rc:       rc,
	}
}

func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(b))
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		old := int64(len(e.value))
		switch {
		case n > old:
			if !c.rc.TryAcquireMemory(n - old) {
				return
			}
		case n < old:
			c.rc.ReleaseMemory(old - n)
		}
		e.value = b
		c.size += n - old
		c.order.MoveToFront(el)
		c.shrink(c.capacity)
		return
	}

	if n > c.capacity {
		return
	}
	// Evict first so the freed memory flows back to the controller.
	c.shrink(c.capacity - n)
	if !c.rc.TryAcquireMemory(n) {
		return
	}

	el := c.order.PushFront(&entry{key: key, value: b})
	c.items[key] = el
	pk := pathKey{key.Kind, key.Path}
	blocks := c.byPath[pk]
	if blocks == nil {
		blocks = make(map[uint64]*list.Element)
		c.byPath[pk] = blocks
	}
	blocks[key.Offset] = el
	c.size += n
}

func (c *LRUBlockCache) InvalidatePath(kind CacheKind, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, el := range c.byPath[pathKey{kind, path}] {
		c.remove(el)
	}
}

func (c *LRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		if predicate(key) {
			c.remove(el)
		}
	}
}

func (c *LRUBlockCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Blocks:    c.order.Len(),
		Bytes:     c.size,
	}
}

// Close drops every block and returns its memory to the controller.
func (c *LRUBlockCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; el = c.order.Front() {
		c.remove(el)
	}
	return nil
}

// Size returns the cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blocks.
func (c *LRUBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// shrink evicts least recently used blocks until size <= limit.
func (c *LRUBlockCache) shrink(limit int64) {
	for c.size > limit {
		el := c.order.Back()
		if el == nil {
			return
		}
		c.remove(el)
		c.evictions++
	}
}

func (c *LRUBlockCache) remove(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.items, e.key)

	pk := pathKey{e.key.Kind, e.key.Path}
	if blocks := c.byPath[pk]; blocks != nil {
		delete(blocks, e.key.Offset)
		if len(blocks) == 0 {
			delete(c.byPath, pk)
		}
	}

	n := int64(len(e.value))
	c.size -= n
	c.rc.ReleaseMemory(n)
}
