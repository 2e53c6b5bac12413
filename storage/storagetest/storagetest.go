// Package storagetest provides a conformance suite for storage.PayloadStore
// implementations, run through storage.Base.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/offset2id"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/testutil"
)

// Run exercises a payload store. newStore must return an empty store; the
// suite closes it.
func Run(t *testing.T, newStore func(t *testing.T) storage.PayloadStore) {
	t.Helper()

	open := func(t *testing.T, optFns ...func(*storage.Options)) (*storage.Base, storage.PayloadStore) {
		t.Helper()
		s := newStore(t)
		b, err := storage.Open(context.Background(), s, optFns...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		return b, s
	}

	t.Run("ExtendScan", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		docs := testutil.NewRNG(1).Docs(5, 3)
		require.NoError(t, b.Extend(ctx, docs))

		assert.Equal(t, 5, b.Len())
		assert.Equal(t, testutil.IDs(docs), b.IDs())

		var scanned []string
		for d, err := range b.Scan(ctx) {
			require.NoError(t, err)
			scanned = append(scanned, d.ID)
		}
		assert.ElementsMatch(t, testutil.IDs(docs), scanned)

		var ordered []*document.Document
		for d, err := range b.All(ctx) {
			require.NoError(t, err)
			ordered = append(ordered, d)
		}
		assert.Equal(t, docs, ordered)
	})

	t.Run("GetSetByOffset", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(2).Docs(4, 0)))

		for _, k := range []int{0, 3, -1, -4} {
			d := document.New(document.WithText("new"))
			require.NoError(t, b.SetByOffset(ctx, k, d))

			got, err := b.GetByOffset(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, d, got)

			id, err := b.IDAt(k)
			require.NoError(t, err)
			assert.Equal(t, d.ID, id)
		}
		assert.Equal(t, 4, b.Len())

		_, err := b.GetByOffset(ctx, 4)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, b.SetByOffset(ctx, -5, document.New()), storage.ErrNotFound)
	})

	t.Run("SetByIDRename", func(t *testing.T) {
		ctx := context.Background()
		b, s := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(3).Docs(3, 0)))

		d := document.New(document.WithID("renamed"), document.WithText("x"))
		require.NoError(t, b.SetByID(ctx, "d1", d))

		ok, err := b.Exists(ctx, "d1")
		require.NoError(t, err)
		assert.False(t, ok)
		has, err := s.Has(ctx, "d1")
		require.NoError(t, err)
		assert.False(t, has)

		got, err := b.GetByID(ctx, "renamed")
		require.NoError(t, err)
		assert.Equal(t, d, got)
		assert.Equal(t, []string{"d0", "renamed", "d2"}, b.IDs())

		assert.ErrorIs(t, b.SetByID(ctx, "d0", document.New(document.WithID("d2"))), storage.ErrDuplicateID)
		assert.ErrorIs(t, b.SetByID(ctx, "nope", document.New()), storage.ErrNotFound)
	})

	t.Run("SetAttrByID", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(4).Docs(2, 0)))

		require.NoError(t, b.SetAttrByID(ctx, "d0", document.AttrText, "hello"))
		got, err := b.GetByID(ctx, "d0")
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Text)

		require.NoError(t, b.SetAttrByID(ctx, "d1", document.AttrID, "x1"))
		assert.Equal(t, []string{"d0", "x1"}, b.IDs())

		assert.ErrorIs(t, b.SetAttrByID(ctx, "d0", "nope", 1), document.ErrUnknownAttribute)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		b, s := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(5).Docs(6, 0)))

		require.NoError(t, b.DeleteByOffset(ctx, -1))
		require.NoError(t, b.DeleteByID(ctx, "d0"))
		assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, b.IDs())

		require.NoError(t, b.DeleteByIDs(ctx, []string{"d3", "d1", "d3"}))
		assert.Equal(t, []string{"d2", "d4"}, b.IDs())

		assert.ErrorIs(t, b.DeleteByIDs(ctx, []string{"d2", "nope"}), storage.ErrNotFound)
		assert.Equal(t, 2, b.Len())
		assert.ErrorIs(t, b.DeleteByID(ctx, "d0"), storage.ErrNotFound)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, b.Clear(ctx))
		assert.Equal(t, 0, b.Len())
		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("Insert", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(6).Docs(2, 0)))

		require.NoError(t, b.Insert(ctx, 1, document.New(document.WithID("x"))))
		require.NoError(t, b.Insert(ctx, b.Len(), document.New(document.WithID("y"))))
		require.NoError(t, b.Insert(ctx, -1, document.New(document.WithID("z"))))
		assert.Equal(t, []string{"d0", "x", "d1", "z", "y"}, b.IDs())

		assert.ErrorIs(t, b.Insert(ctx, 9, document.New()), storage.ErrNotFound)
		assert.ErrorIs(t, b.Insert(ctx, 0, document.New(document.WithID("x"))), storage.ErrDuplicateID)
	})

	t.Run("ExtendDuplicate", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(7).Docs(2, 0)))

		err := b.Extend(ctx, []*document.Document{document.New(document.WithID("n")), document.New(document.WithID("d0"))})
		assert.ErrorIs(t, err, storage.ErrDuplicateID)
		assert.Equal(t, 2, b.Len())

		ok, _ := b.Exists(ctx, "n")
		assert.False(t, ok)
	})

	t.Run("Reopen", func(t *testing.T) {
		ctx := context.Background()
		b, s := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(8).Docs(3, 0)))
		require.NoError(t, b.Sync(ctx))

		b2, err := storage.Open(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, b.IDs(), b2.IDs())
	})

	t.Run("Divergence", func(t *testing.T) {
		ctx := context.Background()
		b, s := open(t)
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(9).Docs(4, 0)))
		require.NoError(t, b.Sync(ctx))

		// Orphan d1 and add a payload the table never saw.
		require.NoError(t, s.Delete(ctx, "d1"))
		require.NoError(t, s.Put(ctx, document.New(document.WithID("extra"))))

		r, err := b.Verify(ctx)
		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Equal(t, []string{"d1"}, r.Orphans)
		assert.Equal(t, []string{"extra"}, r.Missing)

		_, err = storage.Open(ctx, s)
		var de *offset2id.DivergenceError
		require.ErrorAs(t, err, &de)
		assert.ErrorIs(t, err, offset2id.ErrDivergence)

		b2, err := storage.Open(ctx, s, storage.WithRepairOnLoad())
		require.NoError(t, err)
		assert.Equal(t, []string{"d0", "d2", "d3", "extra"}, b2.IDs())

		r, err = b.Repair(ctx)
		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Equal(t, []string{"d0", "d2", "d3", "extra"}, b.IDs())

		r, err = b.Verify(ctx)
		require.NoError(t, err)
		assert.True(t, r.OK())
	})

	t.Run("AutoSync", func(t *testing.T) {
		ctx := context.Background()
		b, s := open(t, storage.WithAutoSync())
		require.NoError(t, b.Extend(ctx, testutil.NewRNG(10).Docs(2, 0)))
		require.NoError(t, b.DeleteByOffset(ctx, 0))

		ids, err := s.LoadOffset2ID(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"d1"}, ids)
	})

	t.Run("Closed", func(t *testing.T) {
		ctx := context.Background()
		b, _ := open(t)
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, err := b.GetByID(ctx, "d0")
		assert.ErrorIs(t, err, storage.ErrClosed)
		assert.ErrorIs(t, b.Extend(ctx, testutil.NewRNG(11).Docs(1, 0)), storage.ErrClosed)
	})
}
