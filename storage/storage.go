// Package storage defines the storage backend contract of a DocumentArray and
// the Base implementation shared by every backend variant.
//
// A backend is split in two:
//
//   - a PayloadStore owns document payloads keyed by id and knows nothing
//     about positions;
//   - Base owns the offset2id table and pairs every payload mutation with
//     the matching table mutation.
//
// Variants (storage/memory, storage/bolt, storage/remote) only provide a
// PayloadStore and construct a Base around it.
package storage

import (
	"context"
	"errors"
	"iter"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/offset2id"
)

var (
	// ErrNotFound is returned when an id or offset does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicateID is returned when a write would store an id twice.
	ErrDuplicateID = offset2id.ErrDuplicateID

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("storage: closed")
)

// Backend is the storage contract consumed by a DocumentArray.
//
// Offsets may be negative and count from the end. Backends are not safe for
// concurrent use; callers serialize access per collection.
type Backend interface {
	GetByOffset(ctx context.Context, k int) (*document.Document, error)
	GetByID(ctx context.Context, id string) (*document.Document, error)
	GetMany(ctx context.Context, ids []string) ([]*document.Document, error)

	// SetByOffset replaces the payload at offset k; the id may change.
	SetByOffset(ctx context.Context, k int, d *document.Document) error
	// SetByID replaces the payload of id. If d.ID != id the old id is
	// deleted and d takes its offset.
	SetByID(ctx context.Context, id string, d *document.Document) error
	// SetAttrByID updates a single attribute of the document stored under id.
	SetAttrByID(ctx context.Context, id, name string, value any) error

	DeleteByOffset(ctx context.Context, k int) error
	DeleteByID(ctx context.Context, id string) error
	// DeleteByIDs removes all ids with a single offset2id rebuild.
	DeleteByIDs(ctx context.Context, ids []string) error

	// Insert places d before offset k; k == Len appends.
	Insert(ctx context.Context, k int, d *document.Document) error
	// Extend appends docs in order.
	Extend(ctx context.Context, docs []*document.Document) error
	Clear(ctx context.Context) error

	// Scan yields documents in storage-native order.
	Scan(ctx context.Context) iter.Seq2[*document.Document, error]
	// All yields documents in offset order.
	All(ctx context.Context) iter.Seq2[*document.Document, error]

	Len() int
	Exists(ctx context.Context, id string) (bool, error)
	IDAt(k int) (string, error)
	OffsetOf(id string) (int, bool)
	IDs() []string

	// Verify compares the offset2id table with the payload store.
	Verify(ctx context.Context) (offset2id.Report, error)
	// Repair reconciles the table with the payload store and persists it.
	Repair(ctx context.Context) (offset2id.Report, error)
	// Sync persists the offset2id table.
	Sync(ctx context.Context) error
	Close() error
}

// PayloadStore holds document payloads and the persisted offset2id list of
// one collection.
type PayloadStore interface {
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*document.Document, error)
	// GetMany returns documents in the order of ids.
	GetMany(ctx context.Context, ids []string) ([]*document.Document, error)
	Put(ctx context.Context, docs ...*document.Document) error
	// Delete ignores unknown ids.
	Delete(ctx context.Context, ids ...string) error
	Has(ctx context.Context, id string) (bool, error)
	// Scan yields documents in storage-native order.
	Scan(ctx context.Context) iter.Seq2[*document.Document, error]
	// Keys returns every stored id in storage-native order.
	Keys(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)

	// LoadOffset2ID returns the persisted id list, or nil if none was saved.
	LoadOffset2ID(ctx context.Context) ([]string, error)
	SaveOffset2ID(ctx context.Context, ids []string) error

	Close() error
}

// Replacer is implemented by payload stores that can swap the payload of
// oldID for d in one step. Base uses it when a replacement renames a
// document, so a failure never leaves both payloads behind.
type Replacer interface {
	Replace(ctx context.Context, oldID string, d *document.Document) error
}
