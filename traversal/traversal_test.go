package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/document"
)

func tree() []*document.Document {
	doc := func(id string, opts ...document.Option) *document.Document {
		return document.New(append([]document.Option{document.WithID(id)}, opts...)...)
	}
	r0 := doc("r0", document.WithChunks(
		doc("r0c0", document.WithChunks(doc("r0c0c0"))),
		doc("r0c1"),
		doc("r0c2"),
	))
	r0.Matches = []*document.Document{doc("r0m0")}
	r0.Chunks[1].Matches = []*document.Document{doc("r0c1m0")}

	r1 := doc("r1", document.WithChunks(doc("r1c0")))
	return []*document.Document{r0, r1}
}

func ids(nodes []document.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Doc.ID
	}
	return out
}

func TestFlat(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"r", []string{"r0", "r1"}},
		{"c", []string{"r0c0", "r0c1", "r0c2", "r1c0"}},
		{"rc", []string{"r0c0", "r0c1", "r0c2", "r1c0"}},
		{"m", []string{"r0m0"}},
		{"cm", []string{"r0c1m0"}},
		{"cc", []string{"r0c0c0"}},
		{"c*", []string{"r0c0", "r0c0c0", "r0c1", "r0c2", "r1c0"}},
		{"c[0:2]", []string{"r0c0", "r0c1", "r1c0"}},
		{"c[-1]", []string{"r0c2", "r1c0"}},
		{"c[1]", []string{"r0c1"}},
		{"c[::2]", []string{"r0c0", "r0c2", "r1c0"}},
		{"r,m", []string{"r0", "r1", "r0m0"}},
		{"m, cm", []string{"r0m0", "r0c1m0"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Flat(tree(), tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFlat_RootsAreTracked(t *testing.T) {
	roots := tree()
	nodes, err := Flat(roots, "c*,r")
	require.NoError(t, err)

	for _, n := range nodes {
		switch n.Doc.ID {
		case "r0c0c0", "r0c1":
			assert.Same(t, roots[0], n.Root)
			assert.False(t, n.IsRoot())
		case "r1c0":
			assert.Same(t, roots[1], n.Root)
		case "r0", "r1":
			assert.True(t, n.IsRoot())
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, p := range []string{"", "x", "c[", "c[a]", "c[1:2:3:4]", "c,,m", "cr"} {
		_, err := Parse(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestFlat_ZeroStep(t *testing.T) {
	_, err := Flat(tree(), "c[::0]")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	nodes, err := Default.Traverse(tree(), "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"r0m0"}, ids(nodes))
}
