package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/docarray/blobstore"
)

// ErrReleased is returned when acquiring a handle whose last reference was
// already released.
var ErrReleased = errors.New("remote: handle released")

// Handle is a reference-counted share of one collection namespace in a
// BlobStore. Every collection instance opened on the handle owns one
// reference. When the last reference is released and the handle is not
// persistent, every blob of the namespace is deleted.
type Handle struct {
	mu      sync.Mutex
	refs    int
	store   *blobstore.PrefixStore
	name    string
	persist bool
}

// NewHandle returns a handle on the namespace name of store holding one
// reference.
func NewHandle(store blobstore.BlobStore, name string, persist bool) *Handle {
	return &Handle{
		refs:    1,
		store:   blobstore.NewPrefixStore(store, name),
		name:    name,
		persist: persist,
	}
}

// Name returns the collection name.
func (h *Handle) Name() string { return h.name }

// Persistent reports whether the blobs survive the last release.
func (h *Handle) Persistent() bool { return h.persist }

// Store returns the namespaced blob store.
func (h *Handle) Store() blobstore.BlobStore { return h.store }

// Acquire adds a reference and returns h.
func (h *Handle) Acquire() (*Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return nil, ErrReleased
	}
	h.refs++
	return h, nil
}

// Refs returns the current reference count.
func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Release drops one reference. The last release of a non-persistent handle
// deletes the namespace.
func (h *Handle) Release(ctx context.Context) error {
	h.mu.Lock()
	if h.refs == 0 {
		h.mu.Unlock()
		return ErrReleased
	}
	h.refs--
	last := h.refs == 0
	h.mu.Unlock()

	if !last || h.persist {
		return nil
	}
	return h.drop(ctx)
}

func (h *Handle) drop(ctx context.Context) error {
	names, err := h.store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("remote: list %s: %w", h.name, err)
	}
	// Pointers may live outside the listing (DynamoDB commit store).
	names = append(names, currentName)
	if err := blobstore.DeleteAll(ctx, h.store, names); err != nil {
		return fmt.Errorf("remote: drop %s: %w", h.name, err)
	}
	return nil
}
