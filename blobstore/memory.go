package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in a map. It backs non-persistent remote
// collections and tests. Stored slices are copies and are never mutated, so
// open blobs keep reading the version they were opened on.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var (
	_ BlobStore    = (*MemoryStore)(nil)
	_ BatchDeleter = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return memoryBlob{bytes.NewReader(data)}, nil
}

// Create buffers writes until Close publishes the blob.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memoryWriter{store: m, name: name}, nil
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.set(name, bytes.Clone(data))
	return nil
}

func (m *MemoryStore) set(name string, data []byte) {
	m.mu.Lock()
	m.blobs[name] = data
	m.mu.Unlock()
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	return m.DeleteMany(ctx, []string{name})
}

func (m *MemoryStore) DeleteMany(_ context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		delete(m.blobs, n)
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for n := range m.blobs {
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

type memoryBlob struct {
	r *bytes.Reader
}

func (b memoryBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.r.ReadAt(p, off)
}

func (b memoryBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(io.NewSectionReader(b.r, off, max(length, 0))), nil
}

func (b memoryBlob) Size() int64  { return b.r.Size() }
func (b memoryBlob) Close() error { return nil }

type memoryWriter struct {
	store  *MemoryStore
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("blobstore: write to closed blob")
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Sync() error { return nil }

func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.store.set(w.name, bytes.Clone(w.buf.Bytes()))
	return nil
}
