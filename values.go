package docarray

import (
	"reflect"

	"github.com/hupe1980/docarray/document"
)

// sequence returns the elements of v when v is a sequence value: a slice
// or array other than []byte. Strings, maps, documents and tensors are
// scalars.
func sequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil, []byte, string, *document.Document, *document.Tensor:
		return nil, false
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []*document.Document:
		out := make([]any, len(x))
		for i, d := range x {
			out[i] = d
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isSequence(v any) bool {
	_, ok := sequence(v)
	return ok
}

// docValue accepts a single document.
func docValue(v any) (*document.Document, error) {
	switch d := v.(type) {
	case *document.Document:
		if d == nil {
			return nil, invalidValue("nil document")
		}
		return d, nil
	case document.Document:
		return &d, nil
	default:
		return nil, invalidValue("expected *document.Document, got %T", v)
	}
}

// docsValue accepts a document or a sequence of documents.
func docsValue(v any) ([]*document.Document, error) {
	if d, ok := v.(*document.Document); ok && d != nil {
		return []*document.Document{d}, nil
	}
	if docs, ok := v.([]*document.Document); ok {
		return docs, nil
	}
	seq, ok := sequence(v)
	if !ok {
		return nil, invalidValue("expected documents, got %T", v)
	}
	out := make([]*document.Document, len(seq))
	for i, x := range seq {
		d, err := docValue(x)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// arrayColumn reports the row count of a value accepted as a whole
// embedding or tensor column.
func arrayColumn(v any) (int, bool) {
	switch x := v.(type) {
	case [][]float32:
		return len(x), true
	case [][]float64:
		return len(x), true
	case []*document.Tensor:
		return len(x), true
	case *document.Tensor:
		if x == nil || len(x.Shape) == 0 {
			return 0, true
		}
		return x.Shape[0], true
	default:
		return 0, false
	}
}

// attrValues normalises the value of a multi-document attribute assignment
// into one value per attribute.
//
// A scalar is the value of the single attribute. A sequence whose elements
// are all scalars is the value sequence of the single attribute. A sequence
// of sequences holds one value sequence per attribute. Typed array columns
// assigned to a single array-like attribute are taken as that column.
func attrValues(attrs []string, value any) []any {
	if len(attrs) == 1 && document.IsArrayAttr(attrs[0]) {
		if _, ok := arrayColumn(value); ok {
			return []any{value}
		}
	}
	seq, ok := sequence(value)
	if !ok {
		return []any{value}
	}
	for _, x := range seq {
		if isSequence(x) {
			return seq
		}
	}
	return []any{value}
}
