// Package docarray provides an ordered, id-addressable collection of
// documents backed interchangeably by an in-process store, an embedded
// bbolt table or a remote object store.
//
// A DocumentArray is both a sequence (documents have offsets) and a
// mapping (documents have ids). The offset2id table keeps the two views
// consistent with backends that only know ids.
//
// # Quick Start
//
//	ctx := context.Background()
//	da := docarray.NewMemory()
//	defer da.Close()
//
//	_ = da.Extend(ctx, []*document.Document{
//	    document.New(document.WithText("hello")),
//	    document.New(document.WithText("world")),
//	})
//
//	d, _ := da.Doc(ctx, -1)                    // last document
//	_ = da.Set(ctx, [2]any{index.Range(0, 2), "text"}, []string{"x", "y"})
//
// # Indexing
//
// Get, Set and Delete accept the same index forms:
//
//	3, -1                       offset
//	"id"                        id
//	"@c", "@r,m"                traversal path (see package traversal)
//	index.Range(1, 4)           slice
//	index.Ellipsis              every document, nested ones included
//	[]bool{true, false, ...}    boolean mask, one entry per document
//	[]int{0, 2}, []string{...}  list of offsets or ids
//	[]float64{0, 2}             numeric array, squeezed to one dimension
//	[2]any{0, "text"}           pair: documents × attributes
//
// The second component of a pair is an attribute name, a list of attribute
// names or, when the first component selects a single document, another
// offset or id. An id present in the collection wins over an attribute of
// the same name.
//
// # Backends
//
//	b, _ := bolt.New(ctx, "./data.db", bolt.WithCollection("books"))
//	da := docarray.New(b)
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("collections"))
//	b, _ = remote.New(ctx, "books", remote.WithBlobStore(s3Store, true))
//	da = docarray.New(b)
//
// # Errors
//
// Failures wrap one of ErrNotFound, ErrLengthMismatch, ErrInvalidIndexShape,
// ErrUnsupportedIndexType, ErrAmbiguousSelector, ErrOffsetIDDivergence or
// ErrInvalidValue. *IndexError and *LengthMismatchError carry the offending
// index and the expected and actual lengths.
package docarray
