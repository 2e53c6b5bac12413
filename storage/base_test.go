package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/memory"
	"github.com/hupe1980/docarray/testutil"
)

var errDeleteFailed = errors.New("delete failed")

// failingDelete rejects every Delete. Replace comes from the embedded store.
type failingDelete struct {
	*memory.Store
}

func (failingDelete) Delete(context.Context, ...string) error { return errDeleteFailed }

// plainStore hides the Replacer of the wrapped store.
type plainStore struct {
	storage.PayloadStore
}

func TestBase_RenameUsesReplacer(t *testing.T) {
	ctx := context.Background()
	s := failingDelete{Store: memory.NewStore()}
	b, err := storage.Open(ctx, s)
	require.NoError(t, err)
	require.NoError(t, b.Extend(ctx, testutil.NewRNG(1).Docs(2, 0)))

	require.NoError(t, b.SetByID(ctx, "d0", document.New(document.WithID("x"))))
	assert.Equal(t, []string{"x", "d1"}, b.IDs())

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "d1"}, keys)

	r, err := b.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, r.OK())
}

func TestBase_RenameWithoutReplacer(t *testing.T) {
	ctx := context.Background()
	s := plainStore{PayloadStore: memory.NewStore()}
	b, err := storage.Open(ctx, s)
	require.NoError(t, err)
	require.NoError(t, b.Extend(ctx, testutil.NewRNG(2).Docs(2, 0)))

	require.NoError(t, b.SetByOffset(ctx, 1, document.New(document.WithID("y"))))
	assert.Equal(t, []string{"d0", "y"}, b.IDs())

	ok, err := s.Has(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBase_OffsetErrorKeepsCallerOffset(t *testing.T) {
	ctx := context.Background()
	b, err := memory.New(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Extend(ctx, testutil.NewRNG(3).Docs(2, 0)))

	err = b.Insert(ctx, -7, document.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorContains(t, err, "offset -7 out of range for length 2")
}
