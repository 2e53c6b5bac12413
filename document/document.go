package document

import (
	"encoding/hex"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Document is a single record of a DocumentArray.
//
// ID is assigned at creation and never reused. All other fields are payload.
type Document struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id,omitempty"`
	Text      string         `json:"text,omitempty"`
	URI       string         `json:"uri,omitempty"`
	MimeType  string         `json:"mime_type,omitempty"`
	Blob      []byte         `json:"blob,omitempty"`
	Weight    float64        `json:"weight,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Tensor    *Tensor        `json:"tensor,omitempty"`
	Tags      map[string]any `json:"tags,omitempty"`
	Chunks    []*Document    `json:"chunks,omitempty"`
	Matches   []*Document    `json:"matches,omitempty"`
}

// Option configures a new Document.
type Option func(*Document)

// WithID sets an explicit identifier instead of a generated one.
func WithID(id string) Option {
	return func(d *Document) { d.ID = id }
}

// WithText sets the text attribute.
func WithText(text string) Option {
	return func(d *Document) { d.Text = text }
}

// WithEmbedding sets the embedding attribute.
func WithEmbedding(v []float32) Option {
	return func(d *Document) { d.Embedding = v }
}

// WithTensor sets the tensor attribute.
func WithTensor(t *Tensor) Option {
	return func(d *Document) { d.Tensor = t }
}

// WithTags sets the tags attribute.
func WithTags(tags map[string]any) Option {
	return func(d *Document) { d.Tags = tags }
}

// WithChunks attaches nested chunk documents and sets their ParentID.
func WithChunks(chunks ...*Document) Option {
	return func(d *Document) {
		for _, c := range chunks {
			c.ParentID = d.ID
		}
		d.Chunks = append(d.Chunks, chunks...)
	}
}

// New creates a Document with a random identifier.
func New(optFns ...Option) *Document {
	d := &Document{ID: NewID()}
	for _, fn := range optFns {
		fn(d)
	}
	return d
}

// NewID returns a fresh identifier (hex encoded UUIDv4).
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Blob = slices.Clone(d.Blob)
	c.Embedding = slices.Clone(d.Embedding)
	c.Tensor = d.Tensor.Clone()
	if d.Tags != nil {
		c.Tags = maps.Clone(d.Tags)
	}
	c.Chunks = cloneAll(d.Chunks)
	c.Matches = cloneAll(d.Matches)
	return &c
}

func cloneAll(docs []*Document) []*Document {
	if docs == nil {
		return nil
	}
	out := make([]*Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

// String returns a short description of the document.
func (d *Document) String() string {
	if d == nil {
		return "<Document nil>"
	}
	return fmt.Sprintf("<Document id=%s chunks=%d matches=%d>", d.ID, len(d.Chunks), len(d.Matches))
}

// Tensor is a dense float32 array with an explicit shape.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// NewTensor creates a tensor; with no shape the tensor is one-dimensional.
func NewTensor(data []float32, shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	n := 1
	for _, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("tensor: negative dimension %d", s)
		}
		n *= s
	}
	if n != len(data) {
		return nil, fmt.Errorf("tensor: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	return &Tensor{Shape: slices.Clone(t.Shape), Data: slices.Clone(t.Data)}
}

// Rows splits t along its first dimension.
func (t *Tensor) Rows() ([]*Tensor, error) {
	if t == nil || len(t.Shape) == 0 {
		return nil, fmt.Errorf("tensor: cannot split a scalar tensor")
	}
	n := t.Shape[0]
	if n == 0 {
		return []*Tensor{}, nil
	}
	stride := len(t.Data) / n
	rowShape := t.Shape[1:]
	if len(rowShape) == 0 {
		rowShape = []int{1}
	}
	rows := make([]*Tensor, n)
	for i := range n {
		rows[i] = &Tensor{
			Shape: slices.Clone(rowShape),
			Data:  slices.Clone(t.Data[i*stride : (i+1)*stride]),
		}
	}
	return rows, nil
}

// Stack joins tensors of identical shape along a new leading dimension.
func Stack(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return &Tensor{Shape: []int{0}}, nil
	}
	var shape []int
	var data []float32
	for i, t := range ts {
		if t == nil {
			return nil, fmt.Errorf("tensor: cannot stack nil tensor at %d", i)
		}
		if i == 0 {
			shape = t.Shape
		} else if !slices.Equal(shape, t.Shape) {
			return nil, fmt.Errorf("tensor: shape %v at %d differs from %v", t.Shape, i, shape)
		}
		data = append(data, t.Data...)
	}
	return &Tensor{Shape: append([]int{len(ts)}, shape...), Data: data}, nil
}
