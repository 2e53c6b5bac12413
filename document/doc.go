// Package document defines the Document record stored in a DocumentArray.
//
// A Document carries a stable string identifier, a handful of scalar
// attributes, two array-like attributes (the embedding vector and the tensor)
// and optional nested chunks and matches.
//
// # Attribute Access
//
// Attributes are addressed by name through an explicit Schema instead of
// reflection:
//
//	ok := document.DefaultSchema.HasAttribute("text")
//	v, err := document.GetAttr(d, "text")
//	err = document.SetAttr(d, "tags__color", "red")
//
// # Array Columns
//
// The embedding and tensor attributes can be read and written for a whole
// sequence of documents in one call:
//
//	err := document.SetArrayColumn(docs, document.AttrEmbedding, [][]float32{...})
package document
