package index

import (
	"math"
	"strings"
)

// PathSigil marks a string index as a traversal path.
const PathSigil = "@"

// Parse classifies v into an Expr.
//
// Integers select an offset, strings an id (or a path when prefixed with
// '@'). A [2]any is a Pair, never a two-element list. []bool and slices
// starting with a bool are masks. []int, []string and slices starting with
// an int or string are lists. Float slices and Array are squeezed to one
// dimension and converted to offsets.
func Parse(v any) (Expr, error) {
	if e, ok, err := scalar(v); ok || err != nil {
		return e, err
	}

	switch x := v.(type) {
	case Slice, All, Mask:
		return x.(Expr), nil
	case Attrs:
		return nil, invalidShape(x, "attribute names are only valid as the second pair component")
	case List:
		return parseList(x)
	case Pair:
		return newPair(x.First, x.Second)
	case [2]any:
		return newPair(x[0], x[1])
	case Array:
		return x.squeeze()
	case []bool:
		return Mask(x), nil
	case []int:
		out := make(List, len(x))
		for i, o := range x {
			out[i] = Offset(o)
		}
		return out, nil
	case []int64:
		out := make(List, len(x))
		for i, o := range x {
			out[i] = Offset(o)
		}
		return out, nil
	case []string:
		out := make(List, len(x))
		for i, s := range x {
			out[i] = parseString(s)
		}
		return out, nil
	case []float64:
		return Array{Data: x, Shape: []int{len(x)}}.squeeze()
	case []float32:
		data := make([]float64, len(x))
		for i, f := range x {
			data[i] = float64(f)
		}
		return Array{Data: data, Shape: []int{len(x)}}.squeeze()
	case []any:
		return parseAny(x)
	default:
		return nil, unsupported(v)
	}
}

// scalar classifies the single-document forms. Unsigned values beyond the
// int range fail instead of wrapping to negative offsets.
func scalar(v any) (Expr, bool, error) {
	switch x := v.(type) {
	case Offset:
		return x, true, nil
	case ID:
		return x, true, nil
	case Path:
		return x, true, nil
	case string:
		return parseString(x), true, nil
	case int:
		return Offset(x), true, nil
	case int8:
		return Offset(x), true, nil
	case int16:
		return Offset(x), true, nil
	case int32:
		return Offset(x), true, nil
	case int64:
		return Offset(x), true, nil
	case uint:
		return unsignedOffset(v, uint64(x))
	case uint8:
		return Offset(x), true, nil
	case uint16:
		return Offset(x), true, nil
	case uint32:
		return Offset(x), true, nil
	case uint64:
		return unsignedOffset(v, x)
	default:
		return nil, false, nil
	}
}

func unsignedOffset(v any, x uint64) (Expr, bool, error) {
	if x > math.MaxInt {
		return nil, true, invalidShape(v, "offset %d overflows int", x)
	}
	return Offset(x), true, nil
}

func parseString(s string) Expr {
	if p, ok := strings.CutPrefix(s, PathSigil); ok {
		return Path(p)
	}
	return ID(s)
}

func parseAny(xs []any) (Expr, error) {
	if len(xs) == 0 {
		return List{}, nil
	}

	if _, ok := xs[0].(bool); ok {
		m := make(Mask, len(xs))
		for i, x := range xs {
			b, ok := x.(bool)
			if !ok {
				return nil, invalidShape(xs, "mask element %d is %T, not bool", i, x)
			}
			m[i] = b
		}
		return m, nil
	}

	if _, ok, _ := scalar(xs[0]); !ok {
		return nil, unsupported(xs)
	}
	out := make(List, len(xs))
	for i, x := range xs {
		e, ok, err := scalar(x)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalidShape(xs, "list element %d is %T, not an offset or id", i, x)
		}
		out[i] = e
	}
	return out, nil
}

func parseList(l List) (Expr, error) {
	for i, e := range l {
		switch e.(type) {
		case Offset, ID, Path:
		default:
			return nil, invalidShape(l, "list element %d is %T, not an offset or id", i, e)
		}
	}
	return l, nil
}

func newPair(first, second any) (Expr, error) {
	f, err := Parse(first)
	if err != nil {
		return nil, err
	}
	switch f.(type) {
	case Pair, Attrs:
		return nil, invalidShape(first, "first pair component cannot be %T", f)
	}

	s, err := parseSecond(second)
	if err != nil {
		return nil, err
	}
	return Pair{First: f, Second: s}, nil
}

// parseSecond accepts an offset, an id or attribute name, or a list of
// attribute names.
func parseSecond(v any) (Expr, error) {
	switch x := v.(type) {
	case string:
		return ID(x), nil
	case Attrs:
		return x, nil
	case []string:
		return Attrs(x), nil
	case []any:
		attrs := make(Attrs, len(x))
		for i, a := range x {
			s, ok := a.(string)
			if !ok {
				return nil, invalidShape(v, "attribute %d is %T, not string", i, a)
			}
			attrs[i] = s
		}
		return attrs, nil
	}
	if e, ok, err := scalar(v); ok || err != nil {
		if err != nil {
			return nil, err
		}
		if _, isPath := e.(Path); isPath {
			return nil, invalidShape(v, "path cannot be the second pair component")
		}
		return e, nil
	}
	return nil, unsupported(v)
}

// squeeze drops unit dimensions and converts the remaining values to offsets.
func (a Array) squeeze() (Expr, error) {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	if len(a.Shape) == 0 {
		n = len(a.Data)
	}
	if n != len(a.Data) {
		return nil, invalidShape(a, "shape %v does not match %d values", a.Shape, len(a.Data))
	}

	ndim := 0
	for _, d := range a.Shape {
		if d != 1 {
			ndim++
		}
	}
	if ndim > 1 {
		return nil, invalidShape(a, "array index must have ndim=1 after squeeze, got ndim=%d", ndim)
	}

	out := make(List, len(a.Data))
	for i, f := range a.Data {
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, invalidShape(a, "array element %d (%v) is not integral", i, f)
		}
		if f >= math.MaxInt || f < math.MinInt {
			return nil, invalidShape(a, "array element %d (%v) overflows int", i, f)
		}
		out[i] = Offset(int(f))
	}
	return out, nil
}
