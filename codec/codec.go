// Package codec centralizes document and metadata encoding.
//
// Documents are written as self-describing frames (see Frame), so stores
// created with one payload codec or compression setting stay readable after
// the defaults change.
package codec

import (
	"fmt"
	"slices"
	"sync"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Name is stored in frame headers and must never change.
	Name() string
}

// Default is the codec of newly written frames. Existing frames keep the
// codec they were written with.
var Default Codec = GoJSON{}

var registry = struct {
	sync.RWMutex
	codecs map[string]Codec
}{codecs: map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}}

// Register makes c available to frame decoding under c.Name(). Built-in
// names cannot be replaced.
func Register(c Codec) error {
	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.codecs[c.Name()]; ok {
		return fmt.Errorf("codec: %q already registered", c.Name())
	}
	registry.codecs[c.Name()] = c
	return nil
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, bool) {
	registry.RLock()
	defer registry.RUnlock()
	c, ok := registry.codecs[name]
	return c, ok
}

// Names returns the registered codec names, sorted.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.codecs))
	for n := range registry.codecs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// MustMarshal marshals v with c (Default when nil) and panics on error.
// Intended for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
