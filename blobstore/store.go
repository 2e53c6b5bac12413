package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for named data blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes visible
	// when the writer is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// BatchDeleter is implemented by stores that remove many blobs in one
// request.
type BatchDeleter interface {
	// DeleteMany removes names. Missing blobs are skipped.
	DeleteMany(ctx context.Context, names []string) error
}

// DeleteAll removes names from s, in one batch when s is a BatchDeleter.
func DeleteAll(ctx context.Context, s BlobStore, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if bd, ok := s.(BatchDeleter); ok {
		return bd.DeleteMany(ctx, names)
	}
	var errs []error
	for _, n := range names {
		if err := s.Delete(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadRange returns a reader over [off, off+length), clamped to the blob size.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a blob under construction.
type WritableBlob interface {
	io.Writer
	io.Closer
	Sync() error
}

// ReadAll opens name and returns its full content.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// ReadCloser is an io.ReadCloser. It is used for blobs synthesized by a store.
type ReadCloser = io.ReadCloser

// NopReadCloser wraps r with a no-op Close.
func NopReadCloser(r io.Reader) ReadCloser {
	return io.NopCloser(r)
}
