package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New(WithText("hello"))
	b := New()

	assert.Len(t, a.ID, 32)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "hello", a.Text)

	d := New(WithID("x"), WithChunks(New(WithID("c0"))))
	assert.Equal(t, "x", d.ID)
	require.Len(t, d.Chunks, 1)
	assert.Equal(t, "x", d.Chunks[0].ParentID)
}

func TestClone(t *testing.T) {
	d := New(
		WithEmbedding([]float32{1, 2}),
		WithTags(map[string]any{"k": "v"}),
		WithChunks(New(WithText("c"))),
	)
	c := d.Clone()
	assert.Equal(t, d, c)

	c.Embedding[0] = 9
	c.Tags["k"] = "changed"
	c.Chunks[0].Text = "changed"
	assert.Equal(t, float32(1), d.Embedding[0])
	assert.Equal(t, "v", d.Tags["k"])
	assert.Equal(t, "c", d.Chunks[0].Text)

	var nilDoc *Document
	assert.Nil(t, nilDoc.Clone())
}

func TestAttr(t *testing.T) {
	t.Run("GetSet", func(t *testing.T) {
		d := New(WithID("a"))
		require.NoError(t, SetAttr(d, AttrText, "hi"))
		require.NoError(t, SetAttr(d, AttrWeight, 2))
		require.NoError(t, SetAttr(d, AttrEmbedding, []float64{1, 2}))
		require.NoError(t, SetAttr(d, AttrTensor, []float32{3, 4}))

		v, err := GetAttr(d, AttrText)
		require.NoError(t, err)
		assert.Equal(t, "hi", v)
		assert.Equal(t, 2.0, d.Weight)
		assert.Equal(t, []float32{1, 2}, d.Embedding)
		assert.Equal(t, []int{2}, d.Tensor.Shape)
	})

	t.Run("Tags", func(t *testing.T) {
		d := New()
		require.NoError(t, SetAttr(d, "tags__color", "red"))
		v, err := GetAttr(d, "tags__color")
		require.NoError(t, err)
		assert.Equal(t, "red", v)

		require.NoError(t, SetAttr(d, "tags__color", nil))
		v, err = GetAttr(d, "tags__color")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("Clear", func(t *testing.T) {
		d := New(WithText("x"), WithEmbedding([]float32{1}))
		require.NoError(t, SetAttr(d, AttrText, nil))
		require.NoError(t, SetAttr(d, AttrEmbedding, nil))
		assert.Empty(t, d.Text)
		assert.Nil(t, d.Embedding)
	})

	t.Run("InvalidValue", func(t *testing.T) {
		d := New()
		err := SetAttr(d, AttrText, 42)
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "int")

		assert.ErrorIs(t, SetAttr(d, AttrID, ""), ErrInvalidValue)
		assert.ErrorIs(t, SetAttr(d, AttrID, nil), ErrInvalidValue)
	})

	t.Run("Unknown", func(t *testing.T) {
		d := New()
		_, err := GetAttr(d, "nope")
		assert.ErrorIs(t, err, ErrUnknownAttribute)
		assert.ErrorIs(t, SetAttr(d, "nope", 1), ErrUnknownAttribute)
	})
}

func TestSchema(t *testing.T) {
	assert.True(t, DefaultSchema.HasAttribute(AttrText))
	assert.True(t, DefaultSchema.HasAttribute("tags__x"))
	assert.False(t, DefaultSchema.HasAttribute("tags__"))
	assert.False(t, DefaultSchema.HasAttribute("b"))

	s := NewSchema(AttrID, AttrText)
	assert.True(t, s.HasAttribute(AttrText))
	assert.False(t, s.HasAttribute("tags__x"))
	assert.Equal(t, []string{"id", "text"}, s.Fields())

	assert.True(t, IsArrayAttr(AttrEmbedding))
	assert.True(t, IsArrayAttr(AttrTensor))
	assert.False(t, IsArrayAttr(AttrText))
}

func TestArrayColumn(t *testing.T) {
	docs := []*Document{New(), New(), New()}

	t.Run("Embedding", func(t *testing.T) {
		require.NoError(t, SetArrayColumn(docs, AttrEmbedding, [][]float32{{1}, {2}, {3}}))
		col, err := GetArrayColumn(docs, AttrEmbedding)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}, {2}, {3}}, col)

		require.NoError(t, SetArrayColumn(docs, AttrEmbedding, nil))
		assert.Nil(t, docs[0].Embedding)
	})

	t.Run("EmbeddingFromTensor", func(t *testing.T) {
		m, err := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
		require.NoError(t, err)
		require.NoError(t, SetArrayColumn(docs, AttrEmbedding, m))
		assert.Equal(t, []float32{5, 6}, docs[2].Embedding)
	})

	t.Run("TensorStacked", func(t *testing.T) {
		st, err := NewTensor(make([]float32, 12), 3, 2, 2)
		require.NoError(t, err)
		require.NoError(t, SetArrayColumn(docs, AttrTensor, st))
		assert.Equal(t, []int{2, 2}, docs[1].Tensor.Shape)

		col, err := GetArrayColumn(docs, AttrTensor)
		require.NoError(t, err)
		back, err := Stack(col.([]*Tensor))
		require.NoError(t, err)
		assert.Equal(t, st, back)
	})

	t.Run("WrongLength", func(t *testing.T) {
		docs[0].Embedding = []float32{7}
		err := SetArrayColumn(docs, AttrEmbedding, [][]float32{{1}, {2}})
		var le *LengthError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, 3, le.Expected)
		assert.Equal(t, 2, le.Actual)
		assert.ErrorIs(t, err, ErrLengthMismatch)
		assert.Equal(t, []float32{7}, docs[0].Embedding)
	})

	t.Run("NotArray", func(t *testing.T) {
		assert.ErrorIs(t, SetArrayColumn(docs, AttrText, nil), ErrUnknownAttribute)
		assert.ErrorIs(t, SetArrayColumn(docs, AttrTensor, "x"), ErrInvalidValue)
	})
}

func TestTensor(t *testing.T) {
	_, err := NewTensor([]float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)

	_, err = Stack([]*Tensor{{Shape: []int{1}, Data: []float32{1}}, {Shape: []int{2}, Data: []float32{1, 2}}})
	assert.Error(t, err)

	empty, err := Stack(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, empty.Shape)
}

func TestWalk(t *testing.T) {
	root := New(WithID("r"),
		WithChunks(
			New(WithID("c0"), WithChunks(New(WithID("c00")))),
			New(WithID("c1")),
		),
	)
	root.Matches = []*Document{New(WithID("m0"))}

	var ids []string
	for n := range Walk(root) {
		assert.Same(t, root, n.Root)
		ids = append(ids, n.Doc.ID)
	}
	assert.Equal(t, []string{"r", "c0", "c00", "c1", "m0"}, ids)

	nodes := Flatten([]*Document{root, New(WithID("s"))})
	require.Len(t, nodes, 6)
	assert.True(t, nodes[0].IsRoot())
	assert.False(t, nodes[1].IsRoot())
	assert.True(t, nodes[5].IsRoot())
	assert.Equal(t, "s", Docs(nodes)[5].ID)
}
