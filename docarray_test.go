package docarray

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/bolt"
	"github.com/hupe1980/docarray/storage/memory"
)

func newDocs(n int) []*document.Document {
	docs := make([]*document.Document, n)
	for i := range n {
		docs[i] = document.New(
			document.WithID(fmt.Sprintf("d%d", i)),
			document.WithText(fmt.Sprintf("t%d", i)),
		)
	}
	return docs
}

func newDA(t *testing.T, n int, optFns ...Option) *DocumentArray {
	t.Helper()
	da := NewMemory(optFns...)
	t.Cleanup(func() { _ = da.Close() })
	require.NoError(t, da.Extend(context.Background(), newDocs(n)))
	return da
}

func TestSetGetByOffset(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	for _, k := range []int{0, 1, 4, -1, -3, -5} {
		d := document.New(document.WithText(fmt.Sprintf("k%d", k)))
		require.NoError(t, da.Set(ctx, k, d))

		got, err := da.Doc(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, d, got)

		pos := k
		if pos < 0 {
			pos += da.Len()
		}
		assert.Equal(t, d.ID, da.IDs()[pos])
	}
	assert.Equal(t, 5, da.Len())

	_, err := da.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = da.Get(ctx, -6)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetByIDRenames(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 3)

	same := document.New(document.WithID("d1"), document.WithText("same"))
	require.NoError(t, da.Set(ctx, "d1", same))
	got, err := da.Doc(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, same, got)

	renamed := document.New(document.WithID("n1"), document.WithText("renamed"))
	require.NoError(t, da.Set(ctx, "d1", renamed))

	ok, err := da.Contains(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = da.Doc(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, renamed, got)
	assert.Equal(t, []string{"d0", "n1", "d2"}, da.IDs())

	assert.ErrorIs(t, da.Set(ctx, "d0", document.New(document.WithID("d2"))), ErrDuplicateID)
	assert.ErrorIs(t, da.Set(ctx, "nope", document.New()), ErrNotFound)
}

func TestExtendScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	da := NewMemory()
	defer da.Close()

	docs := newDocs(6)
	require.NoError(t, da.Extend(ctx, docs))
	assert.Equal(t, 6, da.Len())

	var scanned []*document.Document
	for d, err := range da.Scan(ctx) {
		require.NoError(t, err)
		scanned = append(scanned, d)
	}
	assert.ElementsMatch(t, docs, scanned)

	ids := da.IDs()
	assert.Len(t, ids, 6)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}

	var all []*document.Document
	for d, err := range da.All(ctx) {
		require.NoError(t, err)
		all = append(all, d)
	}
	assert.Equal(t, docs, all)
}

func TestMaskLengthMismatch(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	for _, n := range []int{0, 1, 4, 6, 10} {
		err := da.Set(ctx, make([]bool, n), newDocs(1))
		require.ErrorIs(t, err, ErrLengthMismatch, n)

		var lm *LengthMismatchError
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, 5, lm.Expected)
		assert.Equal(t, n, lm.Actual)
	}
	assert.Equal(t, []string{"d0", "d1", "d2", "d3", "d4"}, da.IDs())
}

func TestMaskSet(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	vals := []*document.Document{
		document.New(document.WithID("v0")),
		document.New(document.WithID("v1")),
		document.New(document.WithID("v2")),
	}
	require.NoError(t, da.Set(ctx, []bool{true, false, true, false, true}, vals))

	assert.Equal(t, 5, da.Len())
	assert.Equal(t, []string{"v0", "d1", "v1", "d3", "v2"}, da.IDs())

	d1, err := da.Doc(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "t1", d1.Text)

	// Mask values must match the selected count.
	err = da.Set(ctx, []any{true, true, false, false, false}, vals)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	got, err := da.Docs(ctx, []bool{false, true, false, true, false})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d3"}, []string{got[0].ID, got[1].ID})
}

func TestPairPrecedence(t *testing.T) {
	ctx := context.Background()
	da := NewMemory()
	defer da.Close()
	require.NoError(t, da.Extend(ctx, []*document.Document{
		document.New(document.WithID("a")),
		document.New(document.WithID("b")),
	}))

	x := document.New(document.WithID("x"))
	y := document.New(document.WithID("y"))
	require.NoError(t, da.Set(ctx, [2]any{0, "b"}, []*document.Document{x, y}))
	assert.Equal(t, []string{"x", "y"}, da.IDs())

	// An id shadows an attribute of the same name.
	require.NoError(t, da.Append(ctx, document.New(document.WithID("text"))))
	got, err := da.Get(ctx, [2]any{0, "text"})
	require.NoError(t, err)
	docs, ok := got.([]*document.Document)
	require.True(t, ok)
	assert.Equal(t, "x", docs[0].ID)
	assert.Equal(t, "text", docs[1].ID)

	require.NoError(t, da.Delete(ctx, "text"))
	require.NoError(t, da.Set(ctx, [2]any{"x", "text"}, "attr"))
	d, err := da.Doc(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "attr", d.Text)

	err = da.Set(ctx, [2]any{0, "nope"}, 1)
	assert.ErrorIs(t, err, ErrAmbiguousSelector)
	var ie *IndexError
	require.ErrorAs(t, err, &ie)

	err = da.Set(ctx, [2]any{0, []string{"text", "nope"}}, []any{"a", 1})
	assert.ErrorIs(t, err, ErrAmbiguousSelector)
}

func TestIdempotentGet(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	for _, idx := range []any{
		index.Range(1, 4),
		[]int{3, 0, 3},
		[]string{"d4", "d2"},
		[]bool{true, false, false, true, true},
		[2]any{index.Until(3), "text"},
		index.Slice{}.By(-2),
	} {
		a, err := da.Get(ctx, idx)
		require.NoError(t, err)
		b, err := da.Get(ctx, idx)
		require.NoError(t, err)
		assert.Equal(t, a, b, "%v", idx)
	}
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	last, err := da.Doc(ctx, -1)
	require.NoError(t, err)
	fifth, err := da.Doc(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, fifth, last)

	docs, err := da.Docs(ctx, []any{3, "d0", -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d0", "d4"}, ids(docs))

	docs, err = da.Docs(ctx, index.Slice{}.By(-2))
	require.NoError(t, err)
	assert.Equal(t, []string{"d4", "d2", "d0"}, ids(docs))

	docs, err = da.Docs(ctx, []float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1"}, ids(docs))

	docs, err = da.Docs(ctx, index.Array{Data: []float64{0, 4}, Shape: []int{1, 2, 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d0", "d4"}, ids(docs))

	docs, err = da.Docs(ctx, index.From(1).By(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids(docs))

	docs, err = da.Docs(ctx, index.Slice{}.By(math.MinInt))
	require.NoError(t, err)
	assert.Equal(t, []string{"d4"}, ids(docs))

	_, err = da.Doc(ctx, -10)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "offset -10 out of range for length 5")

	_, err = da.Get(ctx, uint64(math.MaxUint64))
	assert.ErrorIs(t, err, ErrInvalidIndexShape)

	_, err = da.Doc(ctx, index.Range(0, 2))
	assert.ErrorIs(t, err, ErrInvalidIndexShape)
}

func ids(docs []*document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestSliceAttribute(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 5)

	require.NoError(t, da.Set(ctx, [2]any{index.Range(0, 2), "text"}, []string{"x", "y"}))

	d0, err := da.Doc(ctx, 0)
	require.NoError(t, err)
	d1, err := da.Doc(ctx, 1)
	require.NoError(t, err)
	d2, err := da.Doc(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "x", d0.Text)
	assert.Equal(t, "y", d1.Text)
	assert.Equal(t, "t2", d2.Text)

	err = da.Set(ctx, [2]any{index.Range(0, 2), "text"}, []string{"x", "y", "z"})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	// Scalars are broadcast.
	require.NoError(t, da.Set(ctx, [2]any{[]int{3, 4}, "text"}, "same"))
	texts, err := da.Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "t2", "same", "same"}, texts)
}

func TestMultiAttribute(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 3)

	require.NoError(t, da.Set(ctx,
		[2]any{index.Range(0, 2), []string{"text", "weight"}},
		[]any{[]string{"a", "b"}, []float64{1, 2}},
	))
	got, err := da.Get(ctx, [2]any{index.Range(0, 2), []string{"text", "weight"}})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", "b"}, {1.0, 2.0}}, got)

	require.NoError(t, da.Set(ctx, [2]any{2, []string{"text", "weight"}}, []any{"z", 3.0}))
	got, err = da.Get(ctx, [2]any{2, []string{"text", "weight"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"z", 3.0}, got)

	got, err = da.Get(ctx, [2]any{"d2", "text"})
	require.NoError(t, err)
	assert.Equal(t, "z", got)

	got, err = da.Get(ctx, [2]any{index.Ellipsis, "text"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "z"}, got)

	err = da.Set(ctx, [2]any{2, []string{"text", "weight"}}, "only-one")
	assert.ErrorIs(t, err, ErrLengthMismatch)

	// Renaming through the attribute list follows the new id.
	require.NoError(t, da.Set(ctx, [2]any{"d2", []string{"id", "text"}}, []any{"r2", "renamed"}))
	d, err := da.Doc(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "renamed", d.Text)
}

func TestListSet(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 4)

	x := document.New(document.WithID("x"))
	y := document.New(document.WithID("y"))
	require.NoError(t, da.Set(ctx, []any{0, "d2"}, []*document.Document{x, y}))
	assert.Equal(t, []string{"x", "d1", "y", "d3"}, da.IDs())

	err := da.Set(ctx, []int{1, 3}, []*document.Document{document.New()})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, []string{"x", "d1", "y", "d3"}, da.IDs())

	// A single document is broadcast; the second element collides with it.
	z := document.New(document.WithID("z"))
	err = da.Set(ctx, []int{1, 3}, z)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"x", "z", "y", "d3"}, da.IDs())
}

func TestInvalidIndices(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 3)

	_, err := da.Get(ctx, 1.5)
	assert.ErrorIs(t, err, ErrUnsupportedIndexType)
	_, err = da.Get(ctx, true)
	assert.ErrorIs(t, err, ErrUnsupportedIndexType)
	_, err = da.Get(ctx, map[string]int{})
	assert.ErrorIs(t, err, ErrUnsupportedIndexType)

	_, err = da.Get(ctx, index.Array{Data: []float64{0, 1, 2, 0}, Shape: []int{2, 2}})
	assert.ErrorIs(t, err, ErrInvalidIndexShape)
	var ie *IndexError
	assert.ErrorAs(t, err, &ie)

	_, err = da.Get(ctx, index.Slice{}.By(0))
	assert.ErrorIs(t, err, ErrInvalidIndexShape)

	assert.ErrorIs(t, da.Set(ctx, 0, "not a document"), ErrInvalidValue)
	assert.ErrorIs(t, da.Set(ctx, [2]any{index.Range(0, 2), "weight"}, "heavy"), ErrInvalidValue)
}

func nestedDA(t *testing.T) *DocumentArray {
	t.Helper()
	root := document.New(document.WithID("r0"), document.WithChunks(
		document.New(document.WithID("c0"), document.WithText("chunk0")),
		document.New(document.WithID("c1"), document.WithText("chunk1")),
	))
	da := NewMemory()
	t.Cleanup(func() { _ = da.Close() })
	require.NoError(t, da.Extend(context.Background(), []*document.Document{root, document.New(document.WithID("r1"))}))
	return da
}

func TestPathSet(t *testing.T) {
	ctx := context.Background()
	da := nestedDA(t)

	docs, err := da.Docs(ctx, "@c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1"}, ids(docs))

	require.NoError(t, da.Set(ctx, "@c", []*document.Document{
		document.New(document.WithID("n0"), document.WithText("new0")),
		document.New(document.WithID("n1"), document.WithText("new1")),
	}))

	root, err := da.Doc(ctx, "r0")
	require.NoError(t, err)
	require.Len(t, root.Chunks, 2)
	assert.Equal(t, "n0", root.Chunks[0].ID)
	assert.Equal(t, "r0", root.Chunks[0].ParentID)
	assert.Equal(t, "new1", root.Chunks[1].Text)
	assert.Equal(t, 2, da.Len())

	err = da.Set(ctx, "@c", []*document.Document{document.New()})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	require.NoError(t, da.Set(ctx, [2]any{"@c", "text"}, []string{"a", "b"}))
	got, err := da.Get(ctx, [2]any{"@c", "text"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)

	assert.ErrorIs(t, da.Delete(ctx, "@c"), ErrUnsupportedIndexType)
}

func TestPathSet_RootsTakeValueChunks(t *testing.T) {
	ctx := context.Background()
	da := nestedDA(t)

	chunk := document.New(document.WithID("x0"))
	require.NoError(t, da.Set(ctx, "@r", []*document.Document{
		document.New(document.WithID("a"), document.WithChunks(chunk)),
		document.New(document.WithID("b")),
	}))

	flat, err := da.Flatten(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x0", "b"}, ids(flat))
	assert.Equal(t, "a", flat[1].ParentID)
}

func TestEllipsis(t *testing.T) {
	ctx := context.Background()
	da := nestedDA(t)

	docs, err := da.Docs(ctx, index.Ellipsis)
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "c0", "c1", "r1"}, ids(docs))

	flat, err := da.Flatten(ctx)
	require.NoError(t, err)
	assert.Equal(t, docs, flat)

	err = da.Set(ctx, index.Ellipsis, newDocs(3))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	values := make([]*document.Document, 4)
	for i := range values {
		values[i] = document.New(document.WithID(fmt.Sprintf("n%d", i)), document.WithText(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, da.Set(ctx, index.Ellipsis, values))

	flat, err = da.Flatten(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"n0", "n1", "n2", "n3"}, ids(flat))
	assert.Equal(t, []string{"n0", "n3"}, da.IDs())

	root, err := da.Doc(ctx, "n0")
	require.NoError(t, err)
	require.Len(t, root.Chunks, 2)
	assert.Equal(t, "n0", root.Chunks[0].ParentID)
	assert.Equal(t, "n0", root.Chunks[1].ParentID)
	assert.Equal(t, "v2", root.Chunks[1].Text)

	require.NoError(t, da.Set(ctx, [2]any{index.Ellipsis, "weight"}, 0.5))
	got, err := da.Get(ctx, [2]any{index.Ellipsis, "weight"})
	require.NoError(t, err)
	assert.Equal(t, []any{0.5, 0.5, 0.5, 0.5}, got)

	require.NoError(t, da.Delete(ctx, index.Ellipsis))
	assert.Equal(t, 0, da.Len())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 8)

	require.NoError(t, da.Delete(ctx, -1))
	require.NoError(t, da.Delete(ctx, "d0"))
	require.NoError(t, da.Delete(ctx, []int{0, 2, 0}))
	assert.Equal(t, []string{"d2", "d4", "d5", "d6"}, da.IDs())

	require.NoError(t, da.Delete(ctx, []bool{false, true, false, true}))
	assert.Equal(t, []string{"d2", "d5"}, da.IDs())

	require.NoError(t, da.Delete(ctx, index.From(5)))
	assert.Equal(t, 2, da.Len())

	assert.ErrorIs(t, da.Delete(ctx, []string{"d2", "nope"}), ErrNotFound)
	assert.Equal(t, 2, da.Len())

	require.NoError(t, da.Delete(ctx, [2]any{0, "text"}))
	d, err := da.Doc(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, d.Text)

	require.NoError(t, da.Delete(ctx, [2]any{0, 1}))
	assert.Equal(t, 0, da.Len())
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 2)

	require.NoError(t, da.Insert(ctx, 1, document.New(document.WithID("x"))))
	require.NoError(t, da.Insert(ctx, da.Len(), document.New(document.WithID("y"))))
	assert.Equal(t, []string{"d0", "x", "d1", "y"}, da.IDs())
	assert.ErrorIs(t, da.Insert(ctx, 9, document.New()), ErrNotFound)
}

func TestColumns(t *testing.T) {
	ctx := context.Background()
	da := newDA(t, 3)

	embs := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	require.NoError(t, da.SetEmbeddings(ctx, embs))
	got, err := da.Embeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, embs, got)

	assert.ErrorIs(t, da.SetEmbeddings(ctx, embs[:2]), ErrLengthMismatch)

	tensor, err := document.NewTensor([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	require.NoError(t, da.SetTensors(ctx, tensor))
	ts, err := da.Tensors(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, []float32{3, 4}, ts[1].Data)

	require.NoError(t, da.SetTexts(ctx, []string{"a", "b", "c"}))
	texts, err := da.Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
	assert.ErrorIs(t, da.SetTexts(ctx, []string{"a"}), ErrLengthMismatch)

	require.NoError(t, da.SetEmbeddings(ctx, nil))
	got, err = da.Embeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{nil, nil, nil}, got)

	col, err := da.Get(ctx, [2]any{index.Range(0, 2), "tensor"})
	require.NoError(t, err)
	assert.Len(t, col, 2)
}

func TestVerifyRepair(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	b, err := storage.Open(ctx, store)
	require.NoError(t, err)

	metrics := &BasicMetricsCollector{}
	da := New(b, WithMetricsCollector(metrics))
	defer da.Close()
	require.NoError(t, da.Extend(ctx, newDocs(4)))
	require.NoError(t, da.Sync(ctx))

	require.NoError(t, store.Delete(ctx, "d1"))
	r, err := da.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, r.Orphans)

	_, err = storage.Open(ctx, store)
	assert.ErrorIs(t, err, ErrOffsetIDDivergence)

	r, err = da.Repair(ctx)
	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.Equal(t, []string{"d0", "d2", "d3"}, da.IDs())

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.VerifyCount)
	assert.Equal(t, int64(1), stats.RepairCount)
	assert.Equal(t, int64(3), stats.Len)
}

func TestMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	metrics := &BasicMetricsCollector{}
	da := newDA(t, 3,
		WithMetricsCollector(metrics),
		WithLogger(NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	_, _ = da.Get(ctx, 0)
	_, _ = da.Get(ctx, "nope")
	require.NoError(t, da.Set(ctx, [2]any{0, "text"}, "x"))
	require.NoError(t, da.Delete(ctx, 2))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ExtendCount)
	assert.Equal(t, int64(3), stats.ExtendDocs)
	assert.Equal(t, int64(2), stats.GetCount)
	assert.Equal(t, int64(1), stats.GetErrors)
	assert.Equal(t, int64(1), stats.SetCount)
	assert.Equal(t, int64(1), stats.DeleteCount)
	assert.Equal(t, int64(2), stats.Len)

	assert.Contains(t, buf.String(), "extend completed")
	assert.Contains(t, buf.String(), "set completed")
	assert.Contains(t, buf.String(), "delete completed")
}

func TestBoltBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "da.db")

	b, err := bolt.New(ctx, path, bolt.WithCollection("books"))
	require.NoError(t, err)
	da := New(b)
	require.NoError(t, da.Extend(ctx, newDocs(5)))
	require.NoError(t, da.Set(ctx, [2]any{index.Range(0, 2), "text"}, []string{"x", "y"}))
	require.NoError(t, da.Delete(ctx, 2))
	require.NoError(t, da.Close())

	b, err = bolt.New(ctx, path, bolt.WithCollection("books"))
	require.NoError(t, err)
	da = New(b)
	defer da.Close()

	assert.Equal(t, []string{"d0", "d1", "d3", "d4"}, da.IDs())
	d, err := da.Doc(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "y", d.Text)
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	da := NewMemory()
	require.NoError(t, da.Close())
	require.NoError(t, da.Close())

	_, err := da.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPathListSetAttribute(t *testing.T) {
	ctx := context.Background()
	da := nestedDA(t)

	idx := [2]any{[]string{"@r", "@c"}, "text"}
	require.NoError(t, da.Set(ctx, idx, []string{"ra", "rb", "ca", "cb"}))

	got, err := da.Get(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, []any{"ra", "rb", "ca", "cb"}, got)

	root, err := da.Doc(ctx, "r0")
	require.NoError(t, err)
	assert.Equal(t, "ra", root.Text)
	assert.Equal(t, "ca", root.Chunks[0].Text)
}
