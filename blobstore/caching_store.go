package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/docarray/internal/cache"
)

const (
	// DefaultBlockSize is the cache block size used when none is given.
	DefaultBlockSize = 4096

	maxParallelFetches = 16
)

// CachingStore serves reads through a block cache. Put, Create and Delete
// drop the cached blocks of the blob they touch, so a replaced document is
// never read stale through the same store.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

var _ BlobStore = (*CachingStore)(nil)

// NewCachingStore wraps inner. blockSize <= 0 selects DefaultBlockSize.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{inner: inner, cache: c, blockSize: blockSize}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WritableBlob: w, drop: func() { s.invalidate(name) }}, nil
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.InvalidatePath(cache.CacheKindBlob, name)
}

// invalidatingWriter drops the cached blocks once the new content is
// visible.
type invalidatingWriter struct {
	WritableBlob
	drop func()
}

func (w *invalidatingWriter) Close() error {
	err := w.WritableBlob.Close()
	w.drop()
	return err
}

// CachingBlob reads an opened blob block by block through the cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error { return b.inner.Close() }
func (b *CachingBlob) Size() int64  { return b.inner.Size() }

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{Kind: cache.CacheKindBlob, Path: b.name, Offset: uint64(blk)}
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), size)
	first := off / b.blockSize

	blocks, err := b.blocks(ctx, first, (end-1)/b.blockSize)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, data := range blocks {
		lo := max(off-(first+int64(i))*b.blockSize, 0)
		if lo >= int64(len(data)) {
			break
		}
		n += copy(p[n:], data[lo:])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// blocks returns blocks first..last. Missing blocks are fetched in
// contiguous runs, one inner read per run, runs in parallel.
func (b *CachingBlob) blocks(ctx context.Context, first, last int64) ([][]byte, error) {
	out := make([][]byte, last-first+1)

	type run struct{ start, count int64 }
	var missing []run
	for blk := first; blk <= last; blk++ {
		if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
			out[blk-first] = data
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
			continue
		}
		missing = append(missing, run{start: blk, count: 1})
	}
	if len(missing) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for _, r := range missing {
		g.Go(func() error {
			start := r.start * b.blockSize
			buf := make([]byte, min(r.count*b.blockSize, b.Size()-start))
			n, err := b.inner.ReadAt(gctx, buf, start)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]
			for i := range r.count {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Clip capacity so a cached block cannot grow into its neighbour.
				block := buf[lo:hi:hi]
				out[r.start+i-first] = block
				b.cache.Set(gctx, b.key(r.start+i), block)
			}
			return nil
		})
	}
	return out, g.Wait()
}

// ReadRange serves [off, off+length) through the block cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&blobReader{ctx: ctx, blob: b, off: off, limit: min(off+length, b.Size())}), nil
}

type blobReader struct {
	ctx   context.Context
	blob  *CachingBlob
	off   int64
	limit int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	p = p[:min(int64(len(p)), r.limit-r.off)]
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if n > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}
