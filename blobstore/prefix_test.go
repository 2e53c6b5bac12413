package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	books := NewPrefixStore(inner, "books")
	films := NewPrefixStore(inner, "films/")

	require.NoError(t, books.Put(ctx, "docs/a", []byte("1")))
	require.NoError(t, films.Put(ctx, "docs/a", []byte("2")))

	names, err := inner.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"books/docs/a", "films/docs/a"}, names)

	names, err = books.List(ctx, "docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a"}, names)

	got, err := ReadAll(ctx, films, "docs/a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	require.NoError(t, books.Delete(ctx, "docs/a"))
	_, err = books.Open(ctx, "docs/a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "films/", films.Prefix())
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	books := NewPrefixStore(inner, "books")
	for _, n := range []string{"docs/a", "docs/b", "offset2id/CURRENT"} {
		require.NoError(t, books.Put(ctx, n, []byte("x")))
	}
	require.NoError(t, inner.Put(ctx, "films/docs/a", []byte("y")))

	names, err := books.List(ctx, "")
	require.NoError(t, err)
	require.NoError(t, DeleteAll(ctx, books, append(names, "missing")))

	left, err := inner.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"films/docs/a"}, left)

	// Stores without batch support fall back to single deletes.
	local := NewPrefixStore(NewLocalStore(t.TempDir()), "c")
	require.NoError(t, local.Put(ctx, "docs/a", []byte("1")))
	require.NoError(t, DeleteAll(ctx, local, []string{"docs/a"}))
	names, err = local.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.NoError(t, DeleteAll(ctx, books, nil))
}
