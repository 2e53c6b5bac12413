package document

// GetArrayColumn reads one array-like attribute from every document.
//
// The embedding column is returned as [][]float32, the tensor column as
// []*Tensor.
func GetArrayColumn(docs []*Document, name string) (any, error) {
	switch name {
	case AttrEmbedding:
		out := make([][]float32, len(docs))
		for i, d := range docs {
			out[i] = d.Embedding
		}
		return out, nil
	case AttrTensor:
		out := make([]*Tensor, len(docs))
		for i, d := range docs {
			out[i] = d.Tensor
		}
		return out, nil
	default:
		return nil, &AttrError{Name: name, cause: ErrUnknownAttribute}
	}
}

// SetArrayColumn writes one array-like attribute on every document in a single
// batch. A nil value clears the column.
//
// Accepted values for the embedding column: [][]float32, [][]float64 or a
// two-dimensional *Tensor. For the tensor column: []*Tensor, a *Tensor whose
// leading dimension equals len(docs), or [][]float32.
//
// The length is validated before any document is modified.
func SetArrayColumn(docs []*Document, name string, value any) error {
	switch name {
	case AttrEmbedding:
		rows, err := embeddingRows(value, len(docs))
		if err != nil {
			return err
		}
		for i, d := range docs {
			if rows == nil {
				d.Embedding = nil
				continue
			}
			d.Embedding = rows[i]
		}
		return nil
	case AttrTensor:
		rows, err := tensorRows(value, len(docs))
		if err != nil {
			return err
		}
		for i, d := range docs {
			if rows == nil {
				d.Tensor = nil
				continue
			}
			d.Tensor = rows[i]
		}
		return nil
	default:
		return &AttrError{Name: name, cause: ErrUnknownAttribute}
	}
}

func embeddingRows(value any, n int) ([][]float32, error) {
	var rows [][]float32
	switch v := value.(type) {
	case nil:
		return nil, nil
	case [][]float32:
		rows = v
	case [][]float64:
		rows = make([][]float32, len(v))
		for i, r := range v {
			rows[i], _ = vectorValue(r)
		}
	case *Tensor:
		ts, err := v.Rows()
		if err != nil {
			return nil, err
		}
		rows = make([][]float32, len(ts))
		for i, t := range ts {
			rows[i] = t.Data
		}
	default:
		return nil, &AttrError{Name: AttrEmbedding, Value: value, cause: ErrInvalidValue}
	}
	if len(rows) != n {
		return nil, &LengthError{What: "embeddings", Expected: n, Actual: len(rows)}
	}
	return rows, nil
}

func tensorRows(value any, n int) ([]*Tensor, error) {
	var rows []*Tensor
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []*Tensor:
		rows = v
	case *Tensor:
		ts, err := v.Rows()
		if err != nil {
			return nil, err
		}
		rows = ts
	case [][]float32:
		rows = make([]*Tensor, len(v))
		for i, r := range v {
			rows[i] = &Tensor{Shape: []int{len(r)}, Data: r}
		}
	default:
		return nil, &AttrError{Name: AttrTensor, Value: value, cause: ErrInvalidValue}
	}
	if len(rows) != n {
		return nil, &LengthError{What: "tensors", Expected: n, Actual: len(rows)}
	}
	return rows, nil
}
