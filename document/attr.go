package document

import (
	"strings"
)

// GetAttr returns the value of the named attribute.
func GetAttr(d *Document, name string) (any, error) {
	if key, ok := strings.CutPrefix(name, TagPrefix); ok && key != "" {
		if d.Tags == nil {
			return nil, nil
		}
		return d.Tags[key], nil
	}

	switch name {
	case AttrID:
		return d.ID, nil
	case AttrParentID:
		return d.ParentID, nil
	case AttrText:
		return d.Text, nil
	case AttrURI:
		return d.URI, nil
	case AttrMimeType:
		return d.MimeType, nil
	case AttrBlob:
		return d.Blob, nil
	case AttrWeight:
		return d.Weight, nil
	case AttrEmbedding:
		return d.Embedding, nil
	case AttrTensor:
		return d.Tensor, nil
	case AttrTags:
		return d.Tags, nil
	case AttrChunks:
		return d.Chunks, nil
	case AttrMatches:
		return d.Matches, nil
	default:
		return nil, &AttrError{Name: name, cause: ErrUnknownAttribute}
	}
}

// SetAttr assigns value to the named attribute. A nil value resets the
// attribute to its zero value (the id attribute cannot be cleared).
func SetAttr(d *Document, name string, value any) error {
	if key, ok := strings.CutPrefix(name, TagPrefix); ok && key != "" {
		if value == nil {
			delete(d.Tags, key)
			return nil
		}
		if d.Tags == nil {
			d.Tags = make(map[string]any)
		}
		d.Tags[key] = value
		return nil
	}

	invalid := &AttrError{Name: name, Value: value, cause: ErrInvalidValue}

	switch name {
	case AttrID:
		s, ok := value.(string)
		if !ok || s == "" {
			return invalid
		}
		d.ID = s
	case AttrParentID, AttrText, AttrURI, AttrMimeType:
		s, ok := stringValue(value)
		if !ok {
			return invalid
		}
		switch name {
		case AttrParentID:
			d.ParentID = s
		case AttrText:
			d.Text = s
		case AttrURI:
			d.URI = s
		default:
			d.MimeType = s
		}
	case AttrBlob:
		switch v := value.(type) {
		case nil:
			d.Blob = nil
		case []byte:
			d.Blob = v
		default:
			return invalid
		}
	case AttrWeight:
		f, ok := floatValue(value)
		if !ok {
			return invalid
		}
		d.Weight = f
	case AttrEmbedding:
		v, ok := vectorValue(value)
		if !ok {
			return invalid
		}
		d.Embedding = v
	case AttrTensor:
		t, ok := tensorValue(value)
		if !ok {
			return invalid
		}
		d.Tensor = t
	case AttrTags:
		switch v := value.(type) {
		case nil:
			d.Tags = nil
		case map[string]any:
			d.Tags = v
		default:
			return invalid
		}
	case AttrChunks, AttrMatches:
		var docs []*Document
		switch v := value.(type) {
		case nil:
		case []*Document:
			docs = v
		default:
			return invalid
		}
		if name == AttrChunks {
			d.Chunks = docs
		} else {
			d.Matches = docs
		}
	default:
		return &AttrError{Name: name, cause: ErrUnknownAttribute}
	}
	return nil
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}

func floatValue(v any) (float64, bool) {
	switch f := v.(type) {
	case nil:
		return 0, true
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	default:
		return 0, false
	}
}

func vectorValue(v any) ([]float32, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []float32:
		return x, true
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, true
	case *Tensor:
		if x == nil {
			return nil, true
		}
		return x.Data, true
	default:
		return nil, false
	}
}

func tensorValue(v any) (*Tensor, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case *Tensor:
		return x, true
	case Tensor:
		return &x, true
	case []float32:
		return &Tensor{Shape: []int{len(x)}, Data: x}, true
	default:
		return nil, false
	}
}
