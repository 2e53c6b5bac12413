// Package remote provides the storage backend for collections kept in a
// remote object store (S3, MinIO, DynamoDB-committed S3, or any
// blobstore.BlobStore).
//
// Layout below the collection prefix:
//
//	docs/<escaped id>        one codec frame per document
//	offset2id/<version>      persisted offset2id lists
//	offset2id/CURRENT        name of the current offset2id version
//
// Writing a new version before moving CURRENT keeps the previous list
// readable until the pointer switches.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/docarray/blobstore"
	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/internal/cache"
	"github.com/hupe1980/docarray/offset2id"
	"github.com/hupe1980/docarray/resource"
	"github.com/hupe1980/docarray/storage"
)

const (
	docsDir     = "docs/"
	o2idDir     = "offset2id/"
	currentName = o2idDir + "CURRENT"
)

// Store is a storage.PayloadStore over the namespace of a Handle.
// Storage-native order is the lexical order of the escaped ids.
type Store struct {
	handle *Handle
	blobs  blobstore.BlobStore
	cache  *cache.LRUBlockCache
	opts   Options

	mu           sync.Mutex
	version      uint64
	versionKnown bool
	closed       bool
}

var _ storage.PayloadStore = (*Store)(nil)

// NewStore returns a store that owns one reference of h; Close releases it.
func NewStore(h *Handle, optFns ...func(*Options)) *Store {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultOptions.Parallelism
	}
	if opts.ScanBatchSize <= 0 {
		opts.ScanBatchSize = DefaultOptions.ScanBatchSize
	}
	if opts.KeepVersions < 0 {
		opts.KeepVersions = 0
	}

	s := &Store{handle: h, blobs: h.Store(), opts: opts}
	if opts.CacheBytes > 0 {
		s.cache = cache.NewLRUBlockCache(opts.CacheBytes, opts.Controller)
		s.blobs = blobstore.NewCachingStore(s.blobs, s.cache, 0)
	}
	return s
}

// New creates a handle on the collection name and opens a backend on it.
// Without WithBlobStore the collection lives in a private in-memory store
// and disappears on Close.
func New(ctx context.Context, name string, optFns ...func(*Options)) (*storage.Base, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	bs, persist := opts.BlobStore, opts.Persist
	if bs == nil {
		bs, persist = blobstore.NewMemoryStore(), false
	}
	return open(ctx, NewHandle(bs, name, persist), optFns...)
}

// Open opens another backend on a shared handle, taking a new reference.
func Open(ctx context.Context, h *Handle, optFns ...func(*Options)) (*storage.Base, error) {
	if _, err := h.Acquire(); err != nil {
		return nil, err
	}
	return open(ctx, h, optFns...)
}

func open(ctx context.Context, h *Handle, optFns ...func(*Options)) (*storage.Base, error) {
	s := NewStore(h, optFns...)
	b, err := storage.Open(ctx, s, s.opts.Storage...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return b, nil
}

// Handle returns the shared handle of the store.
func (s *Store) Handle() *Handle { return s.handle }

func docName(id string) string {
	return docsDir + url.PathEscape(id)
}

func versionName(v uint64) string {
	return fmt.Sprintf("%s%020d", o2idDir, v)
}

func parseVersion(name string) (uint64, bool) {
	rest, ok := strings.CutPrefix(name, o2idDir)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	return v, err == nil
}

func translate(id string, err error) error {
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: id %q", storage.ErrNotFound, id)
	}
	return err
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		b, err := s.blobs.Open(ctx, name)
		if err != nil {
			return err
		}
		defer b.Close()

		rc, err := b.ReadRange(ctx, 0, b.Size())
		if err != nil {
			return err
		}
		defer rc.Close()

		data, err = resource.ReadAll(ctx, rc, s.opts.Controller)
		return err
	})
	return data, err
}

func (s *Store) write(ctx context.Context, name string, data []byte) error {
	return s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		if err := s.opts.Controller.AcquireIO(ctx, len(data)); err != nil {
			return err
		}
		return s.blobs.Put(ctx, name, data)
	})
}

func (s *Store) remove(ctx context.Context, name string) error {
	return s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		return s.blobs.Delete(ctx, name)
	})
}

func (s *Store) list(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		var err error
		names, err = s.blobs.List(ctx, prefix)
		return err
	})
	return names, err
}

// Get implements storage.PayloadStore.
func (s *Store) Get(ctx context.Context, id string) (*document.Document, error) {
	data, err := s.read(ctx, docName(id))
	if err != nil {
		return nil, translate(id, err)
	}
	d, err := s.opts.Frame.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("remote: decode %q: %w", id, err)
	}
	return d, nil
}

// GetMany implements storage.PayloadStore. Documents are fetched in parallel.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]*document.Document, error) {
	return s.fetch(ctx, ids, false)
}

// fetch returns the documents of ids in order. With skipMissing, missing
// documents leave a nil entry instead of failing.
func (s *Store) fetch(ctx context.Context, ids []string, skipMissing bool) ([]*document.Document, error) {
	out := make([]*document.Document, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for i, id := range ids {
		g.Go(func() error {
			d, err := s.Get(gctx, id)
			if err != nil {
				if skipMissing && errors.Is(err, storage.ErrNotFound) {
					return nil
				}
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements storage.PayloadStore. Documents are encoded up front and
// written in parallel.
func (s *Store) Put(ctx context.Context, docs ...*document.Document) error {
	frames := make([][]byte, len(docs))
	for i, d := range docs {
		data, err := s.opts.Frame.EncodeDocument(d)
		if err != nil {
			return fmt.Errorf("remote: encode %q: %w", d.ID, err)
		}
		frames[i] = data
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for i, d := range docs {
		g.Go(func() error {
			return s.write(gctx, docName(d.ID), frames[i])
		})
	}
	return g.Wait()
}

// Delete implements storage.PayloadStore.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			return s.remove(gctx, docName(id))
		})
	}
	return g.Wait()
}

// Has implements storage.PayloadStore.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	err := s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		b, err := s.blobs.Open(ctx, docName(id))
		if err != nil {
			return err
		}
		return b.Close()
	})
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Keys implements storage.PayloadStore.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	names, err := s.list(ctx, docsDir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, err := url.PathUnescape(strings.TrimPrefix(n, docsDir))
		if err != nil {
			return nil, fmt.Errorf("remote: blob %q: %w", n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count implements storage.PayloadStore.
func (s *Store) Count(ctx context.Context) (int, error) {
	ids, err := s.Keys(ctx)
	return len(ids), err
}

// Scan implements storage.PayloadStore. The key listing is taken when
// iteration starts; documents are fetched ScanBatchSize at a time and
// documents deleted in the meantime are skipped.
func (s *Store) Scan(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		ids, err := s.Keys(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for start := 0; start < len(ids); start += s.opts.ScanBatchSize {
			end := min(start+s.opts.ScanBatchSize, len(ids))
			docs, err := s.fetch(ctx, ids[start:end], true)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, d := range docs {
				if d == nil {
					continue
				}
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

// LoadOffset2ID implements storage.PayloadStore.
func (s *Store) LoadOffset2ID(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ptr, err := s.read(ctx, currentName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, s.discoverVersion(ctx)
	}
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(string(ptr))
	v, ok := parseVersion(name)
	if !ok {
		return nil, fmt.Errorf("remote: invalid offset2id pointer %q: %w", name, offset2id.ErrCorrupt)
	}
	data, err := s.read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("remote: read %s: %w", name, err)
	}
	ids, err := offset2id.ReadIDs(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	s.version, s.versionKnown = v, true
	return ids, nil
}

// discoverVersion finds the highest written version when no pointer exists.
func (s *Store) discoverVersion(ctx context.Context) error {
	names, err := s.list(ctx, o2idDir)
	if err != nil {
		return err
	}
	s.version = 0
	for _, n := range names {
		if v, ok := parseVersion(n); ok && v > s.version {
			s.version = v
		}
	}
	s.versionKnown = true
	return nil
}

// SaveOffset2ID implements storage.PayloadStore. The list is written as a
// new version, then CURRENT is moved to it and old versions are pruned.
func (s *Store) SaveOffset2ID(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	if !s.versionKnown {
		if err := s.discoverVersion(ctx); err != nil {
			return err
		}
	}

	next := s.version + 1
	name := versionName(next)
	err := s.opts.Controller.Do(ctx, func(ctx context.Context) error {
		w, err := s.blobs.Create(ctx, name)
		if err != nil {
			return err
		}
		if err := offset2id.WriteIDs(resource.NewRateLimitedWriter(ctx, w, s.opts.Controller), ids); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Sync(); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
	if err != nil {
		return fmt.Errorf("remote: write %s: %w", name, err)
	}
	if err := s.write(ctx, currentName, []byte(name)); err != nil {
		return fmt.Errorf("remote: commit %s: %w", name, err)
	}
	s.version = next

	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	names, err := s.list(ctx, o2idDir)
	if err != nil {
		return err
	}
	for _, n := range names {
		v, ok := parseVersion(n)
		if !ok || v+uint64(s.opts.KeepVersions) >= s.version {
			continue
		}
		if err := s.remove(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the handle reference of the store.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.Close()
	}
	return s.handle.Release(context.Background())
}
