package docarray

import (
	"context"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
)

// pairPlan is the interpretation of a pair index.
type pairPlan struct {
	// dual selects the documents of both components.
	dual bool
	// attrs are the attribute names of an attribute selection.
	attrs []string
	// single reports that the second component named one attribute rather
	// than a list, which decides the shape of Get results.
	single bool
}

// planPair disambiguates the second component of p.
//
// With a single-document first component the second component is, in this
// order: a dual selection when it is an offset or an id present in the
// collection, an attribute when the schema knows the name, a list of
// attributes when the schema knows every name. Anything else is
// ErrAmbiguousSelector.
func (da *DocumentArray) planPair(ctx context.Context, p index.Pair) (pairPlan, error) {
	if index.IsSingle(p.First) {
		switch s := p.Second.(type) {
		case index.Offset:
			return pairPlan{dual: true}, nil
		case index.ID:
			ok, err := da.backend.Exists(ctx, string(s))
			if err != nil {
				return pairPlan{}, err
			}
			if ok {
				return pairPlan{dual: true}, nil
			}
			if da.opts.schema.HasAttribute(string(s)) {
				return pairPlan{attrs: []string{string(s)}, single: true}, nil
			}
			return pairPlan{}, ambiguous(p, "%s is neither a valid id nor an attribute name", s)
		case index.Attrs:
			if err := da.checkAttrs(p, s); err != nil {
				return pairPlan{}, err
			}
			return pairPlan{attrs: s}, nil
		}
		return pairPlan{}, unsupportedIndex(p, "unexpected second component")
	}

	switch s := p.Second.(type) {
	case index.ID:
		if !da.opts.schema.HasAttribute(string(s)) {
			return pairPlan{}, ambiguous(p, "%s is not an attribute name", s)
		}
		return pairPlan{attrs: []string{string(s)}, single: true}, nil
	case index.Attrs:
		if err := da.checkAttrs(p, s); err != nil {
			return pairPlan{}, err
		}
		return pairPlan{attrs: s}, nil
	default:
		return pairPlan{}, invalidShape(p, "second component of a multi-document pair must name attributes")
	}
}

func (da *DocumentArray) checkAttrs(p index.Pair, attrs index.Attrs) error {
	if len(attrs) == 0 {
		return invalidShape(p, "empty attribute list")
	}
	for _, a := range attrs {
		if !da.opts.schema.HasAttribute(a) {
			return ambiguous(p, "%q is not an attribute name", a)
		}
	}
	return nil
}

func (da *DocumentArray) dualNodes(ctx context.Context, p index.Pair) ([]document.Node, error) {
	a, err := da.selectNodes(ctx, p.First)
	if err != nil {
		return nil, err
	}
	b, err := da.selectNodes(ctx, p.Second)
	if err != nil {
		return nil, err
	}
	return append(a, b...), nil
}

func (da *DocumentArray) getPair(ctx context.Context, p index.Pair) (any, error) {
	plan, err := da.planPair(ctx, p)
	if err != nil {
		return nil, err
	}
	nodes, err := da.selectNodes(ctx, p.First)
	if err != nil {
		return nil, err
	}
	if plan.dual {
		second, err := da.selectNodes(ctx, p.Second)
		if err != nil {
			return nil, err
		}
		return document.Docs(append(nodes, second...)), nil
	}

	if index.IsSingle(p.First) {
		d := nodes[0].Doc
		if plan.single {
			return document.GetAttr(d, plan.attrs[0])
		}
		out := make([]any, len(plan.attrs))
		for i, a := range plan.attrs {
			if out[i], err = document.GetAttr(d, a); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	docs := document.Docs(nodes)
	cols := make([][]any, len(plan.attrs))
	for i, a := range plan.attrs {
		col := make([]any, len(docs))
		for j, d := range docs {
			if col[j], err = document.GetAttr(d, a); err != nil {
				return nil, err
			}
		}
		cols[i] = col
	}
	if plan.single {
		return cols[0], nil
	}
	return cols, nil
}

func (da *DocumentArray) setPair(ctx context.Context, p index.Pair, value any) error {
	plan, err := da.planPair(ctx, p)
	if err != nil {
		return err
	}
	if plan.dual {
		nodes, err := da.dualNodes(ctx, p)
		if err != nil {
			return err
		}
		return da.setPairs(ctx, nodes, value)
	}

	if index.IsSingle(p.First) {
		ids, err := da.selectIDs(p.First)
		if err != nil {
			return err
		}
		if plan.single {
			return da.backend.SetAttrByID(ctx, ids[0], plan.attrs[0], value)
		}
		vals, ok := sequence(value)
		if !ok {
			vals = []any{value}
		}
		if len(vals) != len(plan.attrs) {
			return lengthMismatch("attribute values", len(plan.attrs), len(vals))
		}
		return da.setDocAttrs(ctx, ids[0], plan.attrs, vals)
	}

	values := attrValues(plan.attrs, value)
	if len(values) != len(plan.attrs) {
		return lengthMismatch("attribute values", len(plan.attrs), len(values))
	}
	return da.setAttributes(ctx, p.First, plan.attrs, values)
}

// setDocAttrs sets several attributes of one top-level document, following
// the id when it is renamed.
func (da *DocumentArray) setDocAttrs(ctx context.Context, id string, attrs []string, vals []any) error {
	for i, a := range attrs {
		if err := da.backend.SetAttrByID(ctx, id, a, vals[i]); err != nil {
			return err
		}
		if a == document.AttrID {
			id = vals[i].(string)
		}
	}
	return nil
}

// setAttributes writes one value per attribute on every selected document.
// Array-like attributes are written as a whole column and the documents
// are stored again; other attributes are written document by document,
// broadcasting scalars and zipping sequences.
func (da *DocumentArray) setAttributes(ctx context.Context, first index.Expr, attrs []string, values []any) error {
	nodes, err := da.selectNodes(ctx, first)
	if err != nil {
		return err
	}

	for i, a := range attrs {
		if document.IsArrayAttr(a) {
			if n, ok := arrayColumn(values[i]); ok && n != len(nodes) {
				return lengthMismatch(a, len(nodes), n)
			}
			continue
		}
		if seq, ok := sequence(values[i]); ok && len(seq) != len(nodes) {
			return lengthMismatch(a, len(nodes), len(seq))
		}
	}

	docs := document.Docs(nodes)
	for i, a := range attrs {
		v := values[i]
		if document.IsArrayAttr(a) {
			if err := document.SetArrayColumn(docs, a, v); err != nil {
				return err
			}
			if err := da.persist(ctx, nodes); err != nil {
				return err
			}
			continue
		}
		seq, isSeq := sequence(v)
		for j, n := range nodes {
			x := v
			if isSeq {
				x = seq[j]
			}
			if err := da.setNodeAttr(ctx, n, a, x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (da *DocumentArray) setNodeAttr(ctx context.Context, n document.Node, name string, value any) error {
	old := n.Doc.ID
	if err := document.SetAttr(n.Doc, name, value); err != nil {
		return err
	}
	if n.IsRoot() {
		return da.backend.SetAttrByID(ctx, old, name, value)
	}
	return da.backend.SetByID(ctx, n.Root.ID, n.Root)
}

// persist stores every touched root once, in selection order.
func (da *DocumentArray) persist(ctx context.Context, nodes []document.Node) error {
	seen := make(map[*document.Document]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.Root]; ok {
			continue
		}
		seen[n.Root] = struct{}{}
		if err := da.backend.SetByID(ctx, n.Root.ID, n.Root); err != nil {
			return err
		}
	}
	return nil
}

func (da *DocumentArray) deletePair(ctx context.Context, p index.Pair) error {
	plan, err := da.planPair(ctx, p)
	if err != nil {
		return err
	}
	if plan.dual {
		a, err := da.selectIDs(p.First)
		if err != nil {
			return err
		}
		b, err := da.selectIDs(p.Second)
		if err != nil {
			return err
		}
		return da.backend.DeleteByIDs(ctx, append(a, b...))
	}

	cleared := make([]any, len(plan.attrs))
	if index.IsSingle(p.First) {
		ids, err := da.selectIDs(p.First)
		if err != nil {
			return err
		}
		return da.setDocAttrs(ctx, ids[0], plan.attrs, cleared)
	}
	return da.setAttributes(ctx, p.First, plan.attrs, cleared)
}
