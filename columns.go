package docarray

import (
	"context"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/index"
)

// column selects one attribute of every top-level document.
func column(name string) index.Pair {
	return index.Pair{First: index.Slice{}, Second: index.ID(name)}
}

// Embeddings returns the embedding of every top-level document in offset order.
func (da *DocumentArray) Embeddings(ctx context.Context) ([][]float32, error) {
	docs, err := da.roots(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	col, err := document.GetArrayColumn(docs, document.AttrEmbedding)
	if err != nil {
		return nil, translateError(err)
	}
	return col.([][]float32), nil
}

// SetEmbeddings writes the embedding column of the top-level documents.
// v is a [][]float32, [][]float64 or a two-dimensional *document.Tensor
// with one row per document; nil clears the column.
func (da *DocumentArray) SetEmbeddings(ctx context.Context, v any) error {
	return da.Set(ctx, column(document.AttrEmbedding), v)
}

// Tensors returns the tensor of every top-level document in offset order.
func (da *DocumentArray) Tensors(ctx context.Context) ([]*document.Tensor, error) {
	docs, err := da.roots(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	col, err := document.GetArrayColumn(docs, document.AttrTensor)
	if err != nil {
		return nil, translateError(err)
	}
	return col.([]*document.Tensor), nil
}

// SetTensors writes the tensor column of the top-level documents.
func (da *DocumentArray) SetTensors(ctx context.Context, v any) error {
	return da.Set(ctx, column(document.AttrTensor), v)
}

// Texts returns the text of every top-level document in offset order.
func (da *DocumentArray) Texts(ctx context.Context) ([]string, error) {
	docs, err := da.roots(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out, nil
}

// SetTexts sets the text of every top-level document. len(texts) must
// equal Len.
func (da *DocumentArray) SetTexts(ctx context.Context, texts []string) error {
	return da.Set(ctx, column(document.AttrText), texts)
}
