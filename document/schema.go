package document

import (
	"slices"
	"strings"
)

// Attribute names understood by GetAttr and SetAttr.
const (
	AttrID        = "id"
	AttrParentID  = "parent_id"
	AttrText      = "text"
	AttrURI       = "uri"
	AttrMimeType  = "mime_type"
	AttrBlob      = "blob"
	AttrWeight    = "weight"
	AttrEmbedding = "embedding"
	AttrTensor    = "tensor"
	AttrTags      = "tags"
	AttrChunks    = "chunks"
	AttrMatches   = "matches"
)

// TagPrefix addresses a single tag, e.g. "tags__color".
const TagPrefix = "tags__"

// Schema reports which attribute names are valid for a document variant.
type Schema interface {
	HasAttribute(name string) bool
}

// FieldSchema is a Schema over a fixed set of attribute names.
type FieldSchema struct {
	fields    map[string]struct{}
	tagFields bool
}

// NewSchema creates a schema accepting the given fields. Fields must be a
// subset of the built-in attribute names.
func NewSchema(fields ...string) *FieldSchema {
	s := &FieldSchema{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		s.fields[f] = struct{}{}
	}
	return s
}

// WithTagFields makes the schema accept "tags__<key>" names.
func (s *FieldSchema) WithTagFields() *FieldSchema {
	s.tagFields = true
	return s
}

// HasAttribute implements Schema.
func (s *FieldSchema) HasAttribute(name string) bool {
	if s.tagFields && strings.HasPrefix(name, TagPrefix) && len(name) > len(TagPrefix) {
		return true
	}
	_, ok := s.fields[name]
	return ok
}

// Fields returns the sorted attribute names of the schema.
func (s *FieldSchema) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// DefaultSchema accepts every built-in attribute and tag paths.
var DefaultSchema Schema = NewSchema(
	AttrID, AttrParentID, AttrText, AttrURI, AttrMimeType, AttrBlob, AttrWeight,
	AttrEmbedding, AttrTensor, AttrTags, AttrChunks, AttrMatches,
).WithTagFields()

// IsArrayAttr reports whether name is one of the two array-like attributes.
func IsArrayAttr(name string) bool {
	return name == AttrEmbedding || name == AttrTensor
}
