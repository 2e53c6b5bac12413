package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/docarray/document"
)

// Frame layout:
//
//	[Magic: 2] [Version: 1] [Compression: 1] [Checksum: 8] [NameLen: 1] [Name] [Block]
//
// Checksum is xxhash64 of the uncompressed payload. Block uses the
// compressed block layout of compressBlock.
const (
	frameMagic   uint16 = 0xDA7A
	frameVersion byte   = 1
	frameFixed          = 2 + 1 + 1 + 8 + 1
)

var (
	// ErrCorruptFrame is returned for frames failing validation.
	ErrCorruptFrame = errors.New("codec: corrupt frame")

	// ErrUnknownCodec is returned for frames written by an unknown codec.
	ErrUnknownCodec = errors.New("codec: unknown codec")
)

// Frame encodes values into self-describing, checksummed and optionally
// compressed byte frames.
type Frame struct {
	Codec       Codec
	Compression Compression
}

// NewFrame returns a frame encoder using the Default codec without compression.
func NewFrame(optFns ...func(f *Frame)) Frame {
	f := Frame{Codec: Default, Compression: CompressionNone}
	for _, fn := range optFns {
		fn(&f)
	}
	if f.Codec == nil {
		f.Codec = Default
	}
	return f
}

// Encode marshals v into a frame.
func (f Frame) Encode(v any) ([]byte, error) {
	c := f.Codec
	if c == nil {
		c = Default
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", c.Name(), err)
	}
	block, err := compressBlock(payload, f.Compression)
	if err != nil {
		return nil, err
	}

	name := c.Name()
	out := make([]byte, frameFixed, frameFixed+len(name)+len(block))
	binary.LittleEndian.PutUint16(out[0:], frameMagic)
	out[2] = frameVersion
	out[3] = byte(f.Compression)
	binary.LittleEndian.PutUint64(out[4:], xxhash.Sum64(payload))
	out[12] = byte(len(name))
	out = append(out, name...)
	return append(out, block...), nil
}

// Decode validates a frame and unmarshals its payload into v. The codec
// recorded in the frame is used regardless of f.Codec.
func (f Frame) Decode(data []byte, v any) error {
	if len(data) < frameFixed {
		return fmt.Errorf("%w: %d bytes", ErrCorruptFrame, len(data))
	}
	if binary.LittleEndian.Uint16(data[0:]) != frameMagic {
		return fmt.Errorf("%w: bad magic", ErrCorruptFrame)
	}
	if data[2] != frameVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptFrame, data[2])
	}
	comp := Compression(data[3])
	sum := binary.LittleEndian.Uint64(data[4:])
	nameLen := int(data[12])
	if len(data) < frameFixed+nameLen {
		return fmt.Errorf("%w: truncated header", ErrCorruptFrame)
	}
	name := string(data[frameFixed : frameFixed+nameLen])
	c, ok := ByName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	payload, err := decompressBlock(data[frameFixed+nameLen:], comp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFrame, err)
	}
	if xxhash.Sum64(payload) != sum {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptFrame)
	}
	return c.Unmarshal(payload, v)
}

// EncodeDocument encodes d into a frame.
func (f Frame) EncodeDocument(d *document.Document) ([]byte, error) {
	return f.Encode(d)
}

// DecodeDocument decodes a frame produced by EncodeDocument.
func (f Frame) DecodeDocument(data []byte) (*document.Document, error) {
	var d document.Document
	if err := f.Decode(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
