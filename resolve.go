package docarray

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
	"github.com/hupe1980/docarray/storage"
)

// Get resolves idx and returns what it selects.
//
// An offset or id returns a *document.Document. Slices, masks, lists,
// paths and index.Ellipsis return []*document.Document in index order.
// Pairs return attribute values (see GetAttr semantics in the package
// documentation) or, for a dual selection, both documents.
func (da *DocumentArray) Get(ctx context.Context, idx any) (any, error) {
	start := time.Now()
	v, err := da.get(ctx, idx)
	err = translateError(err)
	da.opts.metricsCollector.RecordOperation(OpGet, countDocs(v), time.Since(start), err)
	return v, err
}

// Set resolves idx and assigns value to the selection.
//
// Multi-document assignments are not transactional: if an element fails,
// the elements before it stay modified. Length and shape checks run before
// the first write.
func (da *DocumentArray) Set(ctx context.Context, idx any, value any) error {
	start := time.Now()
	err := da.set(ctx, idx, value)
	err = translateError(err)
	da.opts.metricsCollector.RecordOperation(OpSet, 0, time.Since(start), err)
	da.opts.logger.LogSet(ctx, idx, err)
	return err
}

// Delete resolves idx and removes the selection. Multi-document deletes
// commit a single offset2id update. index.Ellipsis clears the collection
// and a pair with attribute names clears those attributes.
func (da *DocumentArray) Delete(ctx context.Context, idx any) error {
	start := time.Now()
	err := da.delete(ctx, idx)
	err = translateError(err)
	da.opts.metricsCollector.RecordOperation(OpDelete, 0, time.Since(start), err)
	da.opts.logger.LogDelete(ctx, idx, err)
	if err == nil {
		da.opts.metricsCollector.RecordLen(da.Len())
	}
	return err
}

// Doc returns the single document selected by idx.
func (da *DocumentArray) Doc(ctx context.Context, idx any) (*document.Document, error) {
	v, err := da.Get(ctx, idx)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*document.Document)
	if !ok {
		return nil, invalidShape(idx, "index selects %T, not a single document", v)
	}
	return d, nil
}

// Docs returns the documents selected by idx. A single selection is
// returned as a one-element slice.
func (da *DocumentArray) Docs(ctx context.Context, idx any) ([]*document.Document, error) {
	v, err := da.Get(ctx, idx)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *document.Document:
		return []*document.Document{x}, nil
	case []*document.Document:
		return x, nil
	default:
		return nil, invalidShape(idx, "index selects %T, not documents", v)
	}
}

func countDocs(v any) int {
	switch x := v.(type) {
	case *document.Document:
		return 1
	case []*document.Document:
		return len(x)
	default:
		return 0
	}
}

func (da *DocumentArray) get(ctx context.Context, idx any) (any, error) {
	e, err := index.Parse(idx)
	if err != nil {
		return nil, err
	}
	switch x := e.(type) {
	case index.Offset:
		return da.backend.GetByOffset(ctx, int(x))
	case index.ID:
		return da.backend.GetByID(ctx, string(x))
	case index.Pair:
		return da.getPair(ctx, x)
	}
	nodes, err := da.selectNodes(ctx, e)
	if err != nil {
		return nil, err
	}
	return document.Docs(nodes), nil
}

func (da *DocumentArray) set(ctx context.Context, idx any, value any) error {
	e, err := index.Parse(idx)
	if err != nil {
		return err
	}
	return da.setExpr(ctx, e, value)
}

func (da *DocumentArray) setExpr(ctx context.Context, e index.Expr, value any) error {
	switch x := e.(type) {
	case index.Offset:
		d, err := docValue(value)
		if err != nil {
			return err
		}
		return da.backend.SetByOffset(ctx, int(x), d)
	case index.ID:
		d, err := docValue(value)
		if err != nil {
			return err
		}
		return da.backend.SetByID(ctx, string(x), d)
	case index.Slice, index.Mask:
		ids, err := da.selectIDs(x)
		if err != nil {
			return err
		}
		return da.setPairs(ctx, stubs(ids), value)
	case index.Path, index.All:
		nodes, err := da.selectNodes(ctx, x)
		if err != nil {
			return err
		}
		return da.setPairs(ctx, nodes, value)
	case index.List:
		return da.setList(ctx, x, value)
	case index.Pair:
		return da.setPair(ctx, x, value)
	default:
		return unsupportedIndex(e, "cannot assign to this index")
	}
}

// setList assigns a scalar value to every element, or zips a sequence
// value with the elements.
func (da *DocumentArray) setList(ctx context.Context, l index.List, value any) error {
	vals, ok := sequence(value)
	if !ok {
		for _, e := range l {
			if err := da.setExpr(ctx, e, value); err != nil {
				return err
			}
		}
		return nil
	}
	if len(vals) != len(l) {
		return lengthMismatch("values", len(l), len(vals))
	}
	for i, e := range l {
		if err := da.setExpr(ctx, e, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// setPairs replaces the document of every node with the matching value.
// Top-level documents are replaced by id; nested documents are replaced
// inside their root, which is stored again under its id.
//
// A node whose chunks or matches are selected as well keeps its existing
// children, so every selected position receives its own value.
func (da *DocumentArray) setPairs(ctx context.Context, nodes []document.Node, value any) error {
	values, err := docsValue(value)
	if err != nil {
		return err
	}
	if len(values) != len(nodes) {
		return lengthMismatch("documents", len(nodes), len(values))
	}

	selected := make(map[*document.Document]struct{}, len(nodes))
	for _, n := range nodes {
		selected[n.Doc] = struct{}{}
	}

	for i, n := range nodes {
		v := values[i].Clone()
		if hasSelectedDescendant(n.Doc, selected) {
			v.Chunks, v.Matches = n.Doc.Chunks, n.Doc.Matches
		}
		if n.IsRoot() {
			old := n.Doc.ID
			v.ParentID = n.Doc.ParentID
			*n.Doc = *v
			adopt(n.Doc)
			if err := da.backend.SetByID(ctx, old, n.Doc); err != nil {
				return err
			}
			continue
		}
		v.ParentID = n.Doc.ParentID
		*n.Doc = *v
		adopt(n.Doc)
		if err := da.backend.SetByID(ctx, n.Root.ID, n.Root); err != nil {
			return err
		}
	}
	return nil
}

func hasSelectedDescendant(d *document.Document, selected map[*document.Document]struct{}) bool {
	for n := range document.Walk(d) {
		if n.Doc == d {
			continue
		}
		if _, ok := selected[n.Doc]; ok {
			return true
		}
	}
	return false
}

// adopt points the direct children of d at its current id.
func adopt(d *document.Document) {
	for _, c := range d.Chunks {
		c.ParentID = d.ID
	}
	for _, m := range d.Matches {
		m.ParentID = d.ID
	}
}

func (da *DocumentArray) delete(ctx context.Context, idx any) error {
	e, err := index.Parse(idx)
	if err != nil {
		return err
	}
	switch x := e.(type) {
	case index.Offset:
		return da.backend.DeleteByOffset(ctx, int(x))
	case index.ID:
		return da.backend.DeleteByID(ctx, string(x))
	case index.Slice, index.Mask, index.List:
		ids, err := da.selectIDs(x)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return da.backend.DeleteByIDs(ctx, ids)
	case index.All:
		return da.backend.Clear(ctx)
	case index.Pair:
		return da.deletePair(ctx, x)
	default:
		return unsupportedIndex(e, "cannot delete by this index")
	}
}

// selectIDs resolves a top-level selector to ids without fetching
// documents. Every offset and id is validated.
func (da *DocumentArray) selectIDs(e index.Expr) ([]string, error) {
	switch x := e.(type) {
	case index.Offset:
		id, err := da.backend.IDAt(int(x))
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case index.ID:
		if _, ok := da.backend.OffsetOf(string(x)); !ok {
			return nil, fmt.Errorf("%w: id %q", storage.ErrNotFound, string(x))
		}
		return []string{string(x)}, nil
	case index.Slice:
		offsets, err := x.Offsets(da.Len())
		if err != nil {
			return nil, err
		}
		return da.idsAt(offsets)
	case index.Mask:
		offsets, err := x.Offsets(da.Len())
		if err != nil {
			return nil, err
		}
		return da.idsAt(offsets)
	case index.All:
		return da.IDs(), nil
	case index.List:
		out := make([]string, 0, len(x))
		for _, el := range x {
			ids, err := da.selectIDs(el)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	case index.Path:
		return nil, unsupportedIndex(x, "traversal paths select nested documents")
	default:
		return nil, unsupportedIndex(e, "cannot select documents")
	}
}

func (da *DocumentArray) idsAt(offsets []int) ([]string, error) {
	ids := da.IDs()
	out := make([]string, len(offsets))
	for i, k := range offsets {
		out[i] = ids[k]
	}
	return out, nil
}

// selectNodes resolves a selector to documents in index order. Paths and
// index.Ellipsis reach nested documents.
func (da *DocumentArray) selectNodes(ctx context.Context, e index.Expr) ([]document.Node, error) {
	var roots []*document.Document
	return da.selectNodesFrom(ctx, e, &roots)
}

// selectNodesFrom resolves e against one fetch of the roots, shared by every
// path of a list, so nodes selected twice point into the same tree.
func (da *DocumentArray) selectNodesFrom(ctx context.Context, e index.Expr, roots *[]*document.Document) ([]document.Node, error) {
	load := func() ([]*document.Document, error) {
		if *roots == nil {
			r, err := da.roots(ctx)
			if err != nil {
				return nil, err
			}
			*roots = r
		}
		return *roots, nil
	}

	switch x := e.(type) {
	case index.All:
		r, err := load()
		if err != nil {
			return nil, err
		}
		return document.Flatten(r), nil
	case index.Path:
		r, err := load()
		if err != nil {
			return nil, err
		}
		return da.opts.traverser.Traverse(r, string(x))
	case index.List:
		if !hasPath(x) {
			break
		}
		if _, err := load(); err != nil {
			return nil, err
		}
		var out []document.Node
		for _, el := range x {
			nodes, err := da.selectNodesFrom(ctx, el, roots)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
		return out, nil
	}

	ids, err := da.selectIDs(e)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []document.Node{}, nil
	}
	if *roots != nil {
		return rootsByID(*roots, ids)
	}
	docs, err := da.backend.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return document.Roots(docs), nil
}

// rootsByID picks the already fetched roots of ids.
func rootsByID(roots []*document.Document, ids []string) ([]document.Node, error) {
	byID := make(map[string]*document.Document, len(roots))
	for _, r := range roots {
		byID[r.ID] = r
	}
	out := make([]document.Node, len(ids))
	for i, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
		}
		out[i] = document.Node{Doc: r, Root: r}
	}
	return out, nil
}

func hasPath(l index.List) bool {
	for _, e := range l {
		if _, ok := e.(index.Path); ok {
			return true
		}
	}
	return false
}

// stubs returns root nodes carrying only ids, for replacements that never
// read the previous payload.
func stubs(ids []string) []document.Node {
	docs := make([]*document.Document, len(ids))
	for i, id := range ids {
		docs[i] = &document.Document{ID: id}
	}
	return document.Roots(docs)
}
