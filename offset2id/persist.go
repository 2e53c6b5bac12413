package offset2id

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

const (
	magic   = 0x4F324944 // "O2ID"
	version = 1
)

// ErrCorrupt is returned by Load for malformed or tampered data.
var ErrCorrupt = errors.New("offset2id: corrupt data")

// Save persists the table to w.
func (t *Table) Save(w io.Writer) error {
	return WriteIDs(w, t.ids)
}

// Load replaces the table contents with the data read from r. Data holding
// duplicate ids is rejected; use ReadIDs to inspect such data.
func (t *Table) Load(r io.Reader) error {
	ids, err := ReadIDs(r)
	if err != nil {
		return err
	}
	return t.Rebuild(ids)
}

// WriteIDs writes an id list in the table format.
// Format: [Magic: 4] [Version: 1] [Count: 8] [Entry...] [Checksum: 8]
// Entry: [Len: 4] [ID bytes]
// Checksum is xxhash64 over every entry.
func WriteIDs(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)

	var hdr [13]byte
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	hdr[4] = version
	binary.LittleEndian.PutUint64(hdr[5:], uint64(len(ids)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	h := xxhash.New()
	mw := io.MultiWriter(bw, h)
	var lenBuf [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(id)))
		if _, err := mw.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(mw, id); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, binary.LittleEndian, h.Sum64()); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadIDs reads an id list written by WriteIDs without checking for
// duplicates.
func ReadIDs(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)

	var hdr [13]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(hdr[0:]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if hdr[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hdr[4])
	}
	count := binary.LittleEndian.Uint64(hdr[5:])

	h := xxhash.New()
	tr := io.TeeReader(br, h)
	ids := make([]string, 0, min(count, 1<<20))
	var lenBuf [4]byte
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(tr, lenBuf[:]); err != nil {
			return nil, err
		}
		buf := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(tr, buf); err != nil {
			return nil, err
		}
		ids = append(ids, string(buf))
	}

	var sum uint64
	if err := binary.Read(br, binary.LittleEndian, &sum); err != nil {
		return nil, err
	}
	if sum != h.Sum64() {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	return ids, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Table) UnmarshalBinary(data []byte) error {
	return t.Load(bytes.NewReader(data))
}

// Fingerprint returns a hash of the ids in order.
func (t *Table) Fingerprint() uint64 { return Fingerprint(t.ids) }

// Fingerprint hashes ids in order. Two tables listing the same ids in the
// same order share a fingerprint.
func Fingerprint(ids []string) uint64 {
	h := xxhash.New()
	var lenBuf [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(id)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.WriteString(id)
	}
	return h.Sum64()
}
