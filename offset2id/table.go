// Package offset2id implements the ordered offset to identifier table of a
// DocumentArray.
//
// The table is the single source of truth for "what is at position k". A
// storage backend owns the document payloads and must apply the matching
// table mutation for every payload mutation that changes membership or
// order.
//
// A Table is not safe for concurrent use.
package offset2id

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrOutOfRange is returned for offsets outside [-len, len).
	ErrOutOfRange = errors.New("offset out of range")

	// ErrNotFound is returned for identifiers not present in the table.
	ErrNotFound = errors.New("id not found")

	// ErrDuplicateID is returned when a mutation would store an id twice.
	ErrDuplicateID = errors.New("duplicate id")
)

// OffsetError reports an offset outside the table.
type OffsetError struct {
	Offset int
	Len    int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("offset %d out of range for length %d", e.Offset, e.Len)
}

func (e *OffsetError) Unwrap() error { return ErrOutOfRange }

// IDError reports an identifier that is missing or already present.
type IDError struct {
	ID    string
	cause error
}

func (e *IDError) Error() string {
	return fmt.Sprintf("%v: %q", e.cause, e.ID)
}

func (e *IDError) Unwrap() error { return e.cause }

// Table is an ordered list of document identifiers with a reverse index.
type Table struct {
	ids []string

	// pos maps id to offset. It is rebuilt lazily after shifting mutations.
	pos   map[string]int
	stale bool
}

// New creates a table holding ids in order. Duplicate ids are rejected.
func New(ids ...string) (*Table, error) {
	t := &Table{}
	if err := t.Rebuild(ids); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of ids.
func (t *Table) Len() int { return len(t.ids) }

// IDs returns a copy of the ids in offset order.
func (t *Table) IDs() []string { return slices.Clone(t.ids) }

// Normalize resolves a possibly negative offset against the current length.
// The error reports k as given.
func (t *Table) Normalize(k int) (int, error) {
	n := len(t.ids)
	i := k
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, &OffsetError{Offset: k, Len: n}
	}
	return i, nil
}

// IDAt returns the id at offset k. Negative offsets count from the end.
func (t *Table) IDAt(k int) (string, error) {
	i, err := t.Normalize(k)
	if err != nil {
		return "", err
	}
	return t.ids[i], nil
}

// OffsetOf returns the offset of id.
func (t *Table) OffsetOf(id string) (int, bool) {
	t.index()
	k, ok := t.pos[id]
	return k, ok
}

// Contains reports whether id is in the table.
func (t *Table) Contains(id string) bool {
	_, ok := t.OffsetOf(id)
	return ok
}

// Append adds id at the end.
func (t *Table) Append(id string) error {
	if t.Contains(id) {
		return &IDError{ID: id, cause: ErrDuplicateID}
	}
	t.ids = append(t.ids, id)
	t.pos[id] = len(t.ids) - 1
	return nil
}

// InsertAt inserts id before offset k. k may equal Len to append.
func (t *Table) InsertAt(k int, id string) error {
	n := len(t.ids)
	i := k
	if i < 0 {
		i += n
	}
	if i < 0 || i > n {
		return &OffsetError{Offset: k, Len: n}
	}
	if t.Contains(id) {
		return &IDError{ID: id, cause: ErrDuplicateID}
	}
	if i == n {
		return t.Append(id)
	}
	t.ids = slices.Insert(t.ids, i, id)
	t.stale = true
	return nil
}

// RemoveAt removes the id at offset k and returns it.
func (t *Table) RemoveAt(k int) (string, error) {
	i, err := t.Normalize(k)
	if err != nil {
		return "", err
	}
	id := t.ids[i]
	t.ids = slices.Delete(t.ids, i, i+1)
	if i == len(t.ids) {
		delete(t.pos, id)
	} else {
		t.stale = true
	}
	return id, nil
}

// RemoveID removes id and returns the offset it was stored at.
func (t *Table) RemoveID(id string) (int, error) {
	k, ok := t.OffsetOf(id)
	if !ok {
		return 0, &IDError{ID: id, cause: ErrNotFound}
	}
	_, err := t.RemoveAt(k)
	return k, err
}

// RemoveMany removes all given ids in a single pass. Unknown ids are
// reported as ErrNotFound before anything is removed.
func (t *Table) RemoveMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := roaring.New()
	for _, id := range ids {
		k, ok := t.OffsetOf(id)
		if !ok {
			return &IDError{ID: id, cause: ErrNotFound}
		}
		drop.Add(uint32(k))
	}

	kept := make([]string, 0, len(t.ids)-int(drop.GetCardinality()))
	for i, id := range t.ids {
		if !drop.Contains(uint32(i)) {
			kept = append(kept, id)
		}
	}
	t.ids = kept
	t.stale = true
	return nil
}

// Replace stores id at offset k in place of the current id.
func (t *Table) Replace(k int, id string) error {
	i, err := t.Normalize(k)
	if err != nil {
		return err
	}
	old := t.ids[i]
	if old == id {
		return nil
	}
	if t.Contains(id) {
		return &IDError{ID: id, cause: ErrDuplicateID}
	}
	t.ids[i] = id
	delete(t.pos, old)
	t.pos[id] = i
	return nil
}

// Rebuild replaces the whole table with ids.
func (t *Table) Rebuild(ids []string) error {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return &IDError{ID: id, cause: ErrDuplicateID}
		}
		pos[id] = i
	}
	t.ids = slices.Clone(ids)
	t.pos = pos
	t.stale = false
	return nil
}

// Clear removes every id.
func (t *Table) Clear() {
	t.ids = nil
	t.pos = make(map[string]int)
	t.stale = false
}

func (t *Table) index() {
	if t.pos != nil && !t.stale {
		return
	}
	t.pos = make(map[string]int, len(t.ids))
	for i, id := range t.ids {
		t.pos[id] = i
	}
	t.stale = false
}
