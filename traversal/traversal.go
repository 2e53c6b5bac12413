// Package traversal resolves traversal paths over document trees.
//
// A path is a comma separated list of selectors. Each selector walks from
// the roots:
//
//	r        the roots themselves
//	c        chunks of the roots
//	m        matches of the roots
//	cm       matches of the chunks of the roots
//	c[0:2]   the first two chunks of every root
//	c*       chunks at every depth below the roots
//
// A leading 'r' may be dropped or kept ("rc" equals "c"). Results of the
// selectors are concatenated in order.
package traversal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
)

// ErrInvalidPath is returned for malformed traversal paths.
var ErrInvalidPath = errors.New("invalid traversal path")

// Traverser resolves a path expression into a flat list of nodes.
type Traverser interface {
	Traverse(roots []*document.Document, path string) ([]document.Node, error)
}

// Default is the traverser used by a DocumentArray unless configured otherwise.
var Default Traverser = PathTraverser{}

// PathTraverser implements the path grammar of this package.
type PathTraverser struct{}

// Traverse implements Traverser.
func (PathTraverser) Traverse(roots []*document.Document, path string) ([]document.Node, error) {
	return Flat(roots, path)
}

// Edge selects nested documents.
type Edge byte

const (
	Chunks  Edge = 'c'
	Matches Edge = 'm'
)

// Step is one edge of a selector.
type Step struct {
	Edge Edge
	// Slice restricts the nested documents of every parent. Nil selects all.
	Slice *index.Slice
	// Recursive follows the edge to every depth.
	Recursive bool
}

// Selector is a sequence of steps starting at the roots. An empty selector
// selects the roots.
type Selector []Step

// Parse splits path into selectors.
func Parse(path string) ([]Selector, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(path, ",")
	out := make([]Selector, 0, len(parts))
	for _, p := range parts {
		sel, err := parseSelector(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPath, path, err)
		}
		out = append(out, sel)
	}
	return out, nil
}

func parseSelector(s string) (Selector, error) {
	if s == "" {
		return nil, errors.New("empty selector")
	}
	s = strings.TrimPrefix(s, "r")

	var sel Selector
	for len(s) > 0 {
		var st Step
		switch s[0] {
		case 'c':
			st.Edge = Chunks
		case 'm':
			st.Edge = Matches
		default:
			return nil, fmt.Errorf("unexpected %q", s[0])
		}
		s = s[1:]

		if strings.HasPrefix(s, "[") {
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, errors.New("unterminated slice")
			}
			sl, err := parseSlice(s[1:end])
			if err != nil {
				return nil, err
			}
			st.Slice = &sl
			s = s[end+1:]
		}
		if strings.HasPrefix(s, "*") {
			st.Recursive = true
			s = s[1:]
		}
		sel = append(sel, st)
	}
	return sel, nil
}

func parseSlice(s string) (index.Slice, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return index.Slice{}, fmt.Errorf("bad slice %q", s)
	}
	if len(parts) == 1 {
		// c[2] selects a single nested document.
		k, err := strconv.Atoi(parts[0])
		if err != nil {
			return index.Slice{}, fmt.Errorf("bad slice %q", s)
		}
		stop := k + 1
		if k == -1 {
			return index.From(k), nil
		}
		return index.Range(k, stop), nil
	}

	var bounds [3]*int
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return index.Slice{}, fmt.Errorf("bad slice %q", s)
		}
		bounds[i] = &v
	}
	return index.Slice{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}, nil
}

// Flat resolves path against roots and returns the selected nodes in order.
func Flat(roots []*document.Document, path string) ([]document.Node, error) {
	sels, err := Parse(path)
	if err != nil {
		return nil, err
	}
	var out []document.Node
	for _, sel := range sels {
		nodes, err := sel.apply(document.Roots(roots))
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (sel Selector) apply(nodes []document.Node) ([]document.Node, error) {
	for _, st := range sel {
		var next []document.Node
		for _, n := range nodes {
			children, err := st.children(n)
			if err != nil {
				return nil, err
			}
			next = append(next, children...)
		}
		nodes = next
	}
	return nodes, nil
}

func (st Step) children(n document.Node) ([]document.Node, error) {
	docs := n.Doc.Chunks
	if st.Edge == Matches {
		docs = n.Doc.Matches
	}
	if st.Slice != nil {
		offsets, err := st.Slice.Offsets(len(docs))
		if err != nil {
			return nil, err
		}
		sel := make([]*document.Document, len(offsets))
		for i, k := range offsets {
			sel[i] = docs[k]
		}
		docs = sel
	}

	out := make([]document.Node, 0, len(docs))
	for _, d := range docs {
		child := document.Node{Doc: d, Root: n.Root}
		out = append(out, child)
		if st.Recursive {
			deeper, err := Step{Edge: st.Edge, Recursive: true}.children(child)
			if err != nil {
				return nil, err
			}
			out = append(out, deeper...)
		}
	}
	return out, nil
}
