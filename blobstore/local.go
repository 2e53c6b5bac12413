package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName   = ".lock"
	tempFilePrefix = ".tmp-"
)

// LocalStore implements BlobStore using the local file system.
//
// Writes are staged in a temporary file and renamed into place. Mutations
// hold an exclusive lock on <root>/.lock so several processes may share a
// directory.
type LocalStore struct {
	root          string
	lock          *flock.Flock
	retryInterval time.Duration
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{
		root:          root,
		lock:          flock.New(filepath.Join(root, lockFileName)),
		retryInterval: 10 * time.Millisecond,
	}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func (s *LocalStore) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	ok, err := s.lock.TryLockContext(ctx, s.retryInterval)
	if err != nil {
		return fmt.Errorf("blobstore: lock %s: %w", s.root, err)
	}
	if !ok {
		return fmt.Errorf("blobstore: lock %s: not acquired", s.root)
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("blobstore: %s: %w", name, ErrNotFound)
	}
	return &localBlob{f: f, size: info.Size()}, nil
}

// Create creates a blob that is renamed into place on Close.
func (s *LocalStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	final := s.path(name)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(final), tempFilePrefix+"*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{store: s, ctx: ctx, f: f, final: final}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.(*localWritableBlob).abort()
		return err
	}
	return w.Close()
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	return s.withLock(ctx, func() error {
		err := os.Remove(s.path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}

// List returns all blobs matching the prefix.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == lockFileName || strings.HasPrefix(base, tempFilePrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type localBlob struct {
	f    *os.File
	size int64
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	return b.f.ReadAt(p, off)
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size {
		return io.NopCloser(strings.NewReader("")), nil
	}
	length = min(length, b.size-off)
	return io.NopCloser(io.NewSectionReader(b.f, off, length)), nil
}

func (b *localBlob) Close() error {
	return b.f.Close()
}

func (b *localBlob) Size() int64 {
	return b.size
}

type localWritableBlob struct {
	store *LocalStore
	ctx   context.Context
	f     *os.File
	final string
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	if err := w.f.Sync(); err != nil {
		_ = w.abort()
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	err := w.store.withLock(w.ctx, func() error {
		return os.Rename(w.f.Name(), w.final)
	})
	if err != nil {
		_ = os.Remove(w.f.Name())
	}
	return err
}

func (w *localWritableBlob) abort() error {
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}
