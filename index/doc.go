// Package index defines the index expressions accepted by a DocumentArray.
//
// An expression is one of a closed set of variants:
//
//	Offset   single position, negative values count from the end
//	ID       single document identifier
//	Path     traversal path (written with a leading '@')
//	Slice    Python-style start:stop:step range
//	All      every document, including nested chunks and matches
//	Mask     boolean selector with one entry per document
//	List     ordered offsets and/or identifiers
//	Array    numeric array, squeezed to a List of offsets
//	Pair     (selector, attribute) or (selector, selector)
//
// Parse classifies dynamic Go values into these variants:
//
//	index.Parse(3)                          // Offset(3)
//	index.Parse("@c")                       // Path("c")
//	index.Parse([]bool{true, false})        // Mask
//	index.Parse([2]any{index.Range(0, 2), "text"}) // Pair
//
// Already classified expressions are returned unchanged, so callers that
// know the shape up front can skip the dynamic step.
package index
