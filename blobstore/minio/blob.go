package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/docarray/blobstore"
)

type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Size() int64  { return b.size }
func (b *blob) Close() error { return nil }

// get opens the inclusive byte range [off, end].
func (b *blob) get(ctx context.Context, off, end int64) (*minio.Object, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}
	return b.client.GetObject(ctx, b.bucket, b.key, opts)
}

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), b.size) - 1

	obj, err := b.get(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, p[:end-off+1])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return blobstore.NopReadCloser(strings.NewReader("")), nil
	}
	return b.get(ctx, off, min(off+length, b.size)-1)
}

// writer feeds a background PutObject through a pipe.
type writer struct {
	pw     *io.PipeWriter
	done   chan error
	closed atomic.Bool
}

func (w *writer) Write(p []byte) (int, error) { return w.pw.Write(p) }

// Sync is a no-op; data is durable once Close returns.
func (w *writer) Sync() error { return nil }

func (w *writer) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return errors.New("minio: writer already closed")
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Abort cancels the upload.
func (w *writer) Abort() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	return w.pw.CloseWithError(errors.New("minio: upload aborted"))
}
