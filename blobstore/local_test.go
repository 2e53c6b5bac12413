package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	blobName := "docs/d-001"
	data := []byte("hello world, this is a test blob for docarray")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "docs", "d-001"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	require.NoError(t, store.Put(ctx, "docs/d-002", []byte("x")))
	require.NoError(t, store.Put(ctx, "offset2id/CURRENT", []byte("1")))

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"docs/d-001", "docs/d-002", "offset2id/CURRENT"}, blobs)

	blobs, err = store.List(ctx, "docs/")
	require.NoError(t, err)
	require.Equal(t, []string{"docs/d-001", "docs/d-002"}, blobs)

	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName), "deleting a missing blob is not an error")

	blobsAfter, err := store.List(ctx, "docs/")
	require.NoError(t, err)
	require.Equal(t, []string{"docs/d-002"}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, content)

	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "89", string(content))

	r, err = blob.ReadRange(ctx, 20, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestLocalBlobStore_Overwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("first")))
	require.NoError(t, store.Put(ctx, "a", []byte("second")))

	got, err := ReadAll(ctx, store, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
