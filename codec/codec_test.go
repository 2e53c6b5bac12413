package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docarray/document"
)

func testDoc() *document.Document {
	return document.New(
		document.WithID("d0"),
		document.WithText(strings.Repeat("hello docarray ", 64)),
		document.WithEmbedding([]float32{0.25, -1, 3}),
		document.WithTags(map[string]any{"kind": "test", "score": 0.5}),
		document.WithChunks(document.New(document.WithID("c0"), document.WithText("chunk"))),
	)
}

func TestFrameRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			t.Run(c.Name()+"/"+comp.String(), func(t *testing.T) {
				f := NewFrame(func(f *Frame) {
					f.Codec = c
					f.Compression = comp
				})
				d := testDoc()

				data, err := f.EncodeDocument(d)
				require.NoError(t, err)

				got, err := f.DecodeDocument(data)
				require.NoError(t, err)
				assert.Equal(t, d, got)
			})
		}
	}
}

func TestFrameCompresses(t *testing.T) {
	d := testDoc()
	plain, err := NewFrame().EncodeDocument(d)
	require.NoError(t, err)
	packed, err := NewFrame(func(f *Frame) { f.Compression = CompressionZSTD }).EncodeDocument(d)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain))
}

func TestFrameSelfDescribing(t *testing.T) {
	data, err := NewFrame(func(f *Frame) { f.Codec = JSON{} }).EncodeDocument(testDoc())
	require.NoError(t, err)

	// Decoding with a differently configured frame still uses the recorded codec.
	got, err := NewFrame(func(f *Frame) { f.Codec = GoJSON{} }).DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, "d0", got.ID)
}

func TestFrameCorrupt(t *testing.T) {
	f := NewFrame(func(f *Frame) { f.Compression = CompressionLZ4 })
	data, err := f.EncodeDocument(testDoc())
	require.NoError(t, err)

	t.Run("Short", func(t *testing.T) {
		_, err := f.DecodeDocument(data[:5])
		assert.ErrorIs(t, err, ErrCorruptFrame)
	})

	t.Run("Magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xff
		_, err := f.DecodeDocument(bad)
		assert.ErrorIs(t, err, ErrCorruptFrame)
	})

	t.Run("Checksum", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[5] ^= 0xff
		_, err := f.DecodeDocument(bad)
		assert.ErrorIs(t, err, ErrCorruptFrame)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := f.DecodeDocument(data[:len(data)-3])
		assert.ErrorIs(t, err, ErrCorruptFrame)
	})

	t.Run("UnknownCodec", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[frameFixed] = 'X'
		_, err := f.DecodeDocument(bad)
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("snappy")
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	c, ok := ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("gob")
	assert.False(t, ok)
}

type taggedJSON struct{ JSON }

func (taggedJSON) Name() string { return "tagged-json" }

func TestRegister(t *testing.T) {
	require.NoError(t, Register(taggedJSON{}))
	assert.Error(t, Register(taggedJSON{}))
	assert.Error(t, Register(JSON{}))
	assert.Contains(t, Names(), "tagged-json")

	f := NewFrame(func(f *Frame) { f.Codec = taggedJSON{} })
	data, err := f.Encode(map[string]int{"a": 1})
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, NewFrame().Decode(data, &got))
	assert.Equal(t, map[string]int{"a": 1}, got)
}
