// Package bolt provides the embedded-table storage backend on top of bbolt.
//
// Each collection lives in a top-level bucket of the database file with two
// nested buckets: "docs" maps document ids to codec frames and "meta" holds
// the persisted offset2id list. Several collections can share one file.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.etcd.io/bbolt"

	"github.com/hupe1980/docarray/codec"
	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/offset2id"
	"github.com/hupe1980/docarray/storage"
)

var (
	bucketDocs = []byte("docs")
	bucketMeta = []byte("meta")
	keyO2ID    = []byte("offset2id")
)

// Options configures a Store.
type Options struct {
	// Collection names the top-level bucket. Default: "docarray".
	Collection string
	// Timeout bounds the wait for the database file lock.
	Timeout time.Duration
	// Frame encodes stored documents.
	Frame codec.Frame
	// ScanBatchSize bounds the documents decoded per read transaction in Scan.
	ScanBatchSize int
	// Storage configures the storage.Base built by New.
	Storage []func(*storage.Options)
}

// DefaultOptions contains the default Store options.
var DefaultOptions = Options{
	Collection:    "docarray",
	Timeout:       5 * time.Second,
	Frame:         codec.NewFrame(func(f *codec.Frame) { f.Compression = codec.CompressionLZ4 }),
	ScanBatchSize: 256,
}

// WithCollection sets the collection bucket name.
func WithCollection(name string) func(*Options) {
	return func(o *Options) { o.Collection = name }
}

// WithCompression sets the frame compression of stored documents.
func WithCompression(c codec.Compression) func(*Options) {
	return func(o *Options) { o.Frame.Compression = c }
}

// WithStorageOptions forwards options to storage.Open.
func WithStorageOptions(optFns ...func(*storage.Options)) func(*Options) {
	return func(o *Options) { o.Storage = append(o.Storage, optFns...) }
}

// Store is a storage.PayloadStore over one bbolt collection bucket.
// Storage-native order is the byte order of the ids.
type Store struct {
	db   *bbolt.DB
	name []byte
	opts Options
}

var (
	_ storage.PayloadStore = (*Store)(nil)
	_ storage.Replacer     = (*Store)(nil)
)

// NewStore opens (or creates) the database file at path and the collection
// bucket inside it.
func NewStore(path string, optFns ...func(*Options)) (*Store, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Collection == "" {
		return nil, errors.New("bolt: empty collection name")
	}
	if opts.ScanBatchSize <= 0 {
		opts.ScanBatchSize = DefaultOptions.ScanBatchSize
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	name := []byte(opts.Collection)
	err = db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return err
		}
		if _, err := root.CreateBucketIfNotExists(bucketDocs); err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, name: name, opts: opts}, nil
}

// New opens a backend over the collection stored in the file at path.
func New(ctx context.Context, path string, optFns ...func(*Options)) (*storage.Base, error) {
	s, err := NewStore(path, optFns...)
	if err != nil {
		return nil, err
	}
	b, err := storage.Open(ctx, s, s.opts.Storage...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return b, nil
}

// Collections lists the collection buckets of the database file at path.
func Collections(path string) ([]string, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: DefaultOptions.Timeout, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var names []string
	err = db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

func (s *Store) docs(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket(s.name).Bucket(bucketDocs)
}

func (s *Store) meta(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket(s.name).Bucket(bucketMeta)
}

func notFound(id string) error {
	return fmt.Errorf("%w: id %q", storage.ErrNotFound, id)
}

// Get implements storage.PayloadStore.
func (s *Store) Get(_ context.Context, id string) (*document.Document, error) {
	var d *document.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := s.docs(tx).Get([]byte(id))
		if data == nil {
			return notFound(id)
		}
		var err error
		d, err = s.opts.Frame.DecodeDocument(data)
		return err
	})
	return d, err
}

// GetMany implements storage.PayloadStore.
func (s *Store) GetMany(_ context.Context, ids []string) ([]*document.Document, error) {
	out := make([]*document.Document, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := s.docs(tx)
		for i, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				return notFound(id)
			}
			d, err := s.opts.Frame.DecodeDocument(data)
			if err != nil {
				return fmt.Errorf("bolt: decode %q: %w", id, err)
			}
			out[i] = d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements storage.PayloadStore. All documents are written in one
// transaction.
func (s *Store) Put(_ context.Context, docs ...*document.Document) error {
	frames := make([][]byte, len(docs))
	for i, d := range docs {
		data, err := s.opts.Frame.EncodeDocument(d)
		if err != nil {
			return fmt.Errorf("bolt: encode %q: %w", d.ID, err)
		}
		frames[i] = data
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := s.docs(tx)
		for i, d := range docs {
			if err := b.Put([]byte(d.ID), frames[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete implements storage.PayloadStore.
func (s *Store) Delete(_ context.Context, ids ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := s.docs(tx)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace implements storage.Replacer. The new payload is written and the
// old one deleted in a single transaction.
func (s *Store) Replace(_ context.Context, oldID string, d *document.Document) error {
	data, err := s.opts.Frame.EncodeDocument(d)
	if err != nil {
		return fmt.Errorf("bolt: encode %q: %w", d.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := s.docs(tx)
		if err := b.Put([]byte(d.ID), data); err != nil {
			return err
		}
		if oldID == d.ID {
			return nil
		}
		return b.Delete([]byte(oldID))
	})
}

// Has implements storage.PayloadStore.
func (s *Store) Has(_ context.Context, id string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = s.docs(tx).Get([]byte(id)) != nil
		return nil
	})
	return ok, err
}

// Keys implements storage.PayloadStore.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return s.docs(tx).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// Count implements storage.PayloadStore.
func (s *Store) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = s.docs(tx).Stats().KeyN
		return nil
	})
	return n, err
}

// Scan implements storage.PayloadStore. Documents are decoded in batches,
// each in its own read transaction, so the caller may write between
// iterations.
func (s *Store) Scan(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		var after []byte
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			batch, last, err := s.scanBatch(after)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, d := range batch {
				if !yield(d, nil) {
					return
				}
			}
			if len(batch) < s.opts.ScanBatchSize {
				return
			}
			after = last
		}
	}
}

func (s *Store) scanBatch(after []byte) ([]*document.Document, []byte, error) {
	batch := make([]*document.Document, 0, s.opts.ScanBatchSize)
	var last []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := s.docs(tx).Cursor()
		var k, v []byte
		if after == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(after)
			if k != nil && bytes.Equal(k, after) {
				k, v = c.Next()
			}
		}
		for ; k != nil && len(batch) < s.opts.ScanBatchSize; k, v = c.Next() {
			d, err := s.opts.Frame.DecodeDocument(v)
			if err != nil {
				return fmt.Errorf("bolt: decode %q: %w", k, err)
			}
			batch = append(batch, d)
			last = bytes.Clone(k)
		}
		return nil
	})
	return batch, last, err
}

// LoadOffset2ID implements storage.PayloadStore.
func (s *Store) LoadOffset2ID(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := s.meta(tx).Get(keyO2ID)
		if data == nil {
			return nil
		}
		var err error
		ids, err = offset2id.ReadIDs(bytes.NewReader(data))
		if ids == nil && err == nil {
			ids = []string{}
		}
		return err
	})
	return ids, err
}

// SaveOffset2ID implements storage.PayloadStore.
func (s *Store) SaveOffset2ID(_ context.Context, ids []string) error {
	var buf bytes.Buffer
	if err := offset2id.WriteIDs(&buf, ids); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return s.meta(tx).Put(keyO2ID, buf.Bytes())
	})
}

// Path returns the database file path.
func (s *Store) Path() string { return s.db.Path() }

// Close implements storage.PayloadStore.
func (s *Store) Close() error {
	return s.db.Close()
}
