package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// JSON encodes with encoding/json. Numbers inside Document.Tags decode as
// float64 and Document.Blob is base64 encoded.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// GoJSON encodes with github.com/goccy/go-json. The output is plain JSON, so
// frames written by either codec decode with the other.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }
