package document

import "iter"

// Node is a document reached while walking a document tree, together with
// the root document that owns it. For a root, Doc and Root are the same.
type Node struct {
	Doc  *Document
	Root *Document
}

// IsRoot reports whether the node is a top-level document.
func (n Node) IsRoot() bool { return n.Doc == n.Root }

// Walk yields root followed by its chunks and matches, depth-first.
func Walk(root *Document) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(root, root, yield)
	}
}

func walk(d, root *Document, yield func(Node) bool) bool {
	if !yield(Node{Doc: d, Root: root}) {
		return false
	}
	for _, c := range d.Chunks {
		if !walk(c, root, yield) {
			return false
		}
	}
	for _, m := range d.Matches {
		if !walk(m, root, yield) {
			return false
		}
	}
	return true
}

// Flatten walks every root and returns all nodes in walk order.
func Flatten(roots []*Document) []Node {
	var out []Node
	for _, r := range roots {
		for n := range Walk(r) {
			out = append(out, n)
		}
	}
	return out
}

// Roots wraps top-level documents as nodes.
func Roots(docs []*Document) []Node {
	out := make([]Node, len(docs))
	for i, d := range docs {
		out[i] = Node{Doc: d, Root: d}
	}
	return out
}

// Docs extracts the documents of nodes.
func Docs(nodes []Node) []*Document {
	out := make([]*Document, len(nodes))
	for i, n := range nodes {
		out[i] = n.Doc
	}
	return out
}
