package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Expr is a classified index expression. The set of implementations is closed.
type Expr interface {
	fmt.Stringer
	expr()
}

// Offset selects a single position. Negative offsets count from the end.
type Offset int

// ID selects a single document by identifier. As the second component of
// a Pair it may also name an attribute.
type ID string

// Path is a traversal path such as "r", "c" or "c,m". The '@' sigil is not
// part of the value.
type Path string

// All selects every document of the flattened collection.
type All struct{}

// Ellipsis is the All expression.
var Ellipsis = All{}

// Mask selects the positions holding true. Its length must equal the
// collection length.
type Mask []bool

// List selects the listed Offset, ID or Path elements in order.
type List []Expr

// Attrs is an ordered list of attribute names. It is only valid as the
// second component of a Pair.
type Attrs []string

// Pair is a two-component index. First selects documents; Second is either
// another single selector (dual selection) or attribute names.
type Pair struct {
	First  Expr
	Second Expr
}

// Array is a numeric array used as an index. Parse squeezes it to a List
// of offsets.
type Array struct {
	Data  []float64
	Shape []int
}

func (Offset) expr() {}
func (ID) expr()     {}
func (Path) expr()   {}
func (Slice) expr()  {}
func (All) expr()    {}
func (Mask) expr()   {}
func (List) expr()   {}
func (Attrs) expr()  {}
func (Pair) expr()   {}
func (Array) expr()  {}

func (o Offset) String() string { return strconv.Itoa(int(o)) }
func (i ID) String() string     { return strconv.Quote(string(i)) }
func (p Path) String() string   { return "@" + string(p) }
func (All) String() string      { return "..." }

func (m Mask) String() string {
	return fmt.Sprintf("mask[%d]", len(m))
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a Attrs) String() string {
	parts := make([]string, len(a))
	for i, s := range a {
		parts[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p Pair) String() string {
	return fmt.Sprintf("(%v, %v)", p.First, p.Second)
}

func (a Array) String() string {
	return fmt.Sprintf("array%v", a.Shape)
}

// Bitmap returns the selected positions as a bitmap.
func (m Mask) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for i, b := range m {
		if b {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Offsets returns the selected positions in ascending order after checking
// that the mask covers exactly n documents.
func (m Mask) Offsets(n int) ([]int, error) {
	if len(m) != n {
		return nil, &MaskLengthError{Expected: n, Actual: len(m)}
	}
	bm := m.Bitmap()
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out, nil
}

// IsSingle reports whether e selects exactly one document.
func IsSingle(e Expr) bool {
	switch e.(type) {
	case Offset, ID:
		return true
	default:
		return false
	}
}
