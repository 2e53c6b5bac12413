// Package memory provides the in-process storage backend.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/storage"
)

type entry struct {
	doc *document.Document
	seq uint64
}

// Store is an in-memory storage.PayloadStore. Documents are cloned on the
// way in and out, so callers never share payloads with the store.
//
// Storage-native order is insertion order; replacing a document keeps its
// position.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]entry
	seq     uint64
	o2id    []string
	o2idSet bool
	closed  bool
}

var (
	_ storage.PayloadStore = (*Store)(nil)
	_ storage.Replacer     = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]entry)}
}

// New opens a backend over a fresh in-memory store.
func New(ctx context.Context, optFns ...func(o *storage.Options)) (*storage.Base, error) {
	return storage.Open(ctx, NewStore(), optFns...)
}

// Get implements storage.PayloadStore.
func (s *Store) Get(_ context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %q", storage.ErrNotFound, id)
	}
	return e.doc.Clone(), nil
}

// GetMany implements storage.PayloadStore.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]*document.Document, error) {
	out := make([]*document.Document, len(ids))
	for i, id := range ids {
		d, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// Put implements storage.PayloadStore.
func (s *Store) Put(_ context.Context, docs ...*document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	for _, d := range docs {
		e, ok := s.docs[d.ID]
		if !ok {
			s.seq++
			e.seq = s.seq
		}
		e.doc = d.Clone()
		s.docs[d.ID] = e
	}
	return nil
}

// Delete implements storage.PayloadStore.
func (s *Store) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// Replace implements storage.Replacer. The new document takes the
// storage-native position of oldID.
func (s *Store) Replace(_ context.Context, oldID string, d *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	e, ok := s.docs[oldID]
	if !ok {
		s.seq++
		e.seq = s.seq
	}
	delete(s.docs, oldID)
	e.doc = d.Clone()
	s.docs[d.ID] = e
	return nil
}

// Has implements storage.PayloadStore.
func (s *Store) Has(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok, nil
}

// Keys implements storage.PayloadStore.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys(), nil
}

func (s *Store) keys() []string {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(s.docs[a].seq, s.docs[b].seq)
	})
	return ids
}

// Scan implements storage.PayloadStore. The scan works on a snapshot of the
// keys taken when iteration starts.
func (s *Store) Scan(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		keys, _ := s.Keys(ctx)
		for _, id := range keys {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			s.mu.RLock()
			e, ok := s.docs[id]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(e.doc.Clone(), nil) {
				return
			}
		}
	}
}

// Count implements storage.PayloadStore.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// LoadOffset2ID implements storage.PayloadStore.
func (s *Store) LoadOffset2ID(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.o2idSet {
		return nil, nil
	}
	return slices.Clone(s.o2id), nil
}

// SaveOffset2ID implements storage.PayloadStore.
func (s *Store) SaveOffset2ID(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.o2id = slices.Clone(ids)
	s.o2idSet = true
	return nil
}

// Close implements storage.PayloadStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
