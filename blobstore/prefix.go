package blobstore

import (
	"context"
	"strings"
)

// PrefixStore scopes a BlobStore to the names below a prefix.
type PrefixStore struct {
	inner  BlobStore
	prefix string
}

var (
	_ BlobStore    = (*PrefixStore)(nil)
	_ BatchDeleter = (*PrefixStore)(nil)
)

// NewPrefixStore returns a store whose names are relative to prefix. A
// trailing "/" is added to non-empty prefixes.
func NewPrefixStore(inner BlobStore, prefix string) *PrefixStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &PrefixStore{inner: inner, prefix: prefix}
}

// Prefix returns the scoping prefix.
func (s *PrefixStore) Prefix() string { return s.prefix }

func (s *PrefixStore) Open(ctx context.Context, name string) (Blob, error) {
	return s.inner.Open(ctx, s.prefix+name)
}

func (s *PrefixStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, s.prefix+name)
}

func (s *PrefixStore) Put(ctx context.Context, name string, data []byte) error {
	return s.inner.Put(ctx, s.prefix+name, data)
}

func (s *PrefixStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, s.prefix+name)
}

// DeleteMany implements BatchDeleter on top of the inner store.
func (s *PrefixStore) DeleteMany(ctx context.Context, names []string) error {
	full := make([]string, len(names))
	for i, n := range names {
		full[i] = s.prefix + n
	}
	return DeleteAll(ctx, s.inner, full)
}

func (s *PrefixStore) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := s.inner.List(ctx, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		names[i] = strings.TrimPrefix(n, s.prefix)
	}
	return names, nil
}
