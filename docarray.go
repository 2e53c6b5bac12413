package docarray

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/offset2id"
	"github.com/hupe1980/docarray/storage"
	"github.com/hupe1980/docarray/storage/memory"
)

// DocumentArray is an ordered, id-addressable collection of documents kept
// in a storage backend.
//
// A DocumentArray is not safe for concurrent use. Callers that share one
// instance between goroutines must serialize access themselves.
type DocumentArray struct {
	backend storage.Backend
	opts    options
}

// New creates a DocumentArray over backend. The DocumentArray owns the
// backend and closes it on Close.
func New(backend storage.Backend, optFns ...Option) *DocumentArray {
	return &DocumentArray{
		backend: backend,
		opts:    applyOptions(optFns),
	}
}

// NewMemory creates a DocumentArray on a fresh in-memory backend.
func NewMemory(optFns ...Option) *DocumentArray {
	b, err := memory.New(context.Background())
	if err != nil {
		// An empty in-memory store has nothing to diverge from.
		panic(err)
	}
	return New(b, optFns...)
}

// Backend returns the storage backend.
func (da *DocumentArray) Backend() storage.Backend { return da.backend }

// Len returns the number of top-level documents.
func (da *DocumentArray) Len() int { return da.backend.Len() }

// IDs returns the ids of the top-level documents in offset order.
func (da *DocumentArray) IDs() []string { return da.backend.IDs() }

// Contains reports whether a top-level document with id exists.
func (da *DocumentArray) Contains(ctx context.Context, id string) (bool, error) {
	ok, err := da.backend.Exists(ctx, id)
	return ok, translateError(err)
}

// Append adds docs at the end of the collection.
func (da *DocumentArray) Append(ctx context.Context, docs ...*document.Document) error {
	return da.Extend(ctx, docs)
}

// Extend adds docs at the end of the collection in order. Duplicate ids
// fail the call before anything is written.
func (da *DocumentArray) Extend(ctx context.Context, docs []*document.Document) error {
	start := time.Now()
	err := translateError(da.backend.Extend(ctx, docs))
	da.opts.metricsCollector.RecordOperation(OpExtend, len(docs), time.Since(start), err)
	da.opts.logger.LogExtend(ctx, len(docs), da.Len(), err)
	if err == nil {
		da.opts.metricsCollector.RecordLen(da.Len())
	}
	return err
}

// Insert places d before offset k. k may equal Len to append; negative
// offsets count from the end.
func (da *DocumentArray) Insert(ctx context.Context, k int, d *document.Document) error {
	start := time.Now()
	err := translateError(da.backend.Insert(ctx, k, d))
	da.opts.metricsCollector.RecordOperation(OpInsert, 1, time.Since(start), err)
	if err == nil {
		da.opts.metricsCollector.RecordLen(da.Len())
	}
	return err
}

// All yields the top-level documents in offset order.
func (da *DocumentArray) All(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		for d, err := range da.backend.All(ctx) {
			if !yield(d, translateError(err)) {
				return
			}
		}
	}
}

// Scan yields the top-level documents in storage-native order.
func (da *DocumentArray) Scan(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		for d, err := range da.backend.Scan(ctx) {
			if !yield(d, translateError(err)) {
				return
			}
		}
	}
}

// Flatten returns every document of the collection, nested chunks and
// matches included, depth-first in offset order.
func (da *DocumentArray) Flatten(ctx context.Context) ([]*document.Document, error) {
	nodes, err := da.flatten(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return document.Docs(nodes), nil
}

func (da *DocumentArray) roots(ctx context.Context) ([]*document.Document, error) {
	docs := make([]*document.Document, 0, da.Len())
	for d, err := range da.backend.All(ctx) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (da *DocumentArray) flatten(ctx context.Context) ([]document.Node, error) {
	roots, err := da.roots(ctx)
	if err != nil {
		return nil, err
	}
	return document.Flatten(roots), nil
}

// Verify compares the offset2id table with the stored documents.
func (da *DocumentArray) Verify(ctx context.Context) (offset2id.Report, error) {
	r, err := da.backend.Verify(ctx)
	if err != nil {
		return r, translateError(err)
	}
	if !r.OK() {
		da.opts.logger.LogDivergence(ctx, r)
	}
	da.opts.metricsCollector.RecordVerify(findings(r), false)
	return r, nil
}

// Repair reconciles the offset2id table with the stored documents and
// persists it. The report describes the state before the repair.
func (da *DocumentArray) Repair(ctx context.Context) (offset2id.Report, error) {
	r, err := da.backend.Repair(ctx)
	if err != nil {
		da.opts.logger.LogRepair(ctx, da.Len(), err)
		return r, translateError(err)
	}
	if !r.OK() {
		da.opts.logger.LogDivergence(ctx, r)
		da.opts.logger.LogRepair(ctx, da.Len(), nil)
		da.opts.metricsCollector.RecordLen(da.Len())
	}
	da.opts.metricsCollector.RecordVerify(findings(r), !r.OK())
	return r, nil
}

func findings(r offset2id.Report) int {
	return len(r.Duplicates) + len(r.Orphans) + len(r.Missing)
}

// Sync persists the offset2id table.
func (da *DocumentArray) Sync(ctx context.Context) error {
	return translateError(da.backend.Sync(ctx))
}
