package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/offset2id"
)

// Base implements Backend on top of a PayloadStore.
//
// Offsets are validated before any payload mutation, and the offset2id
// mutation is applied right after the payload mutation succeeds.
type Base struct {
	store  PayloadStore
	table  *offset2id.Table
	opts   Options
	closed bool
}

var _ Backend = (*Base)(nil)

// Open loads the persisted offset2id table of store and verifies it against
// the stored payloads. A diverged table fails with a
// *offset2id.DivergenceError unless RepairOnLoad is set.
func Open(ctx context.Context, store PayloadStore, optFns ...func(o *Options)) (*Base, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ScanBatchSize <= 0 {
		opts.ScanBatchSize = DefaultOptions.ScanBatchSize
	}

	persisted, err := store.LoadOffset2ID(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: load offset2id: %w", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: list payloads: %w", err)
	}

	b := &Base{store: store, table: &offset2id.Table{}, opts: opts}

	report := offset2id.Verify(persisted, keys)
	if report.OK() {
		if err := b.table.Rebuild(persisted); err != nil {
			return nil, err
		}
		return b, nil
	}

	opts.Logger.WarnContext(ctx, "offset2id diverged from storage",
		"table_len", report.TableLen,
		"store_len", report.StoreLen,
		"duplicates", len(report.Duplicates),
		"orphans", len(report.Orphans),
		"missing", len(report.Missing),
	)
	if !opts.RepairOnLoad {
		return nil, report.Err()
	}

	if err := b.table.Rebuild(offset2id.Reconcile(persisted, keys)); err != nil {
		return nil, err
	}
	if err := b.Sync(ctx); err != nil {
		return nil, err
	}
	opts.Logger.InfoContext(ctx, "offset2id repaired", "len", b.table.Len())
	return b, nil
}

// Store returns the underlying payload store.
func (b *Base) Store() PayloadStore { return b.store }

// Len returns the number of documents.
func (b *Base) Len() int { return b.table.Len() }

// IDs returns the ids in offset order.
func (b *Base) IDs() []string { return b.table.IDs() }

// IDAt returns the id stored at offset k.
func (b *Base) IDAt(k int) (string, error) {
	id, err := b.table.IDAt(k)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return id, nil
}

// OffsetOf returns the offset of id.
func (b *Base) OffsetOf(id string) (int, bool) { return b.table.OffsetOf(id) }

// Exists reports whether id is part of the collection.
func (b *Base) Exists(_ context.Context, id string) (bool, error) {
	if b.closed {
		return false, ErrClosed
	}
	return b.table.Contains(id), nil
}

// GetByOffset returns the document at offset k.
func (b *Base) GetByOffset(ctx context.Context, k int) (*document.Document, error) {
	id, err := b.IDAt(k)
	if err != nil {
		return nil, err
	}
	return b.GetByID(ctx, id)
}

// GetByID returns the document stored under id.
func (b *Base) GetByID(ctx context.Context, id string) (*document.Document, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if !b.table.Contains(id) {
		return nil, notFound(id)
	}
	return b.store.Get(ctx, id)
}

// GetMany returns the documents of ids in order.
func (b *Base) GetMany(ctx context.Context, ids []string) ([]*document.Document, error) {
	if b.closed {
		return nil, ErrClosed
	}
	for _, id := range ids {
		if !b.table.Contains(id) {
			return nil, notFound(id)
		}
	}
	return b.store.GetMany(ctx, ids)
}

// SetByOffset replaces the document at offset k with d.
func (b *Base) SetByOffset(ctx context.Context, k int, d *document.Document) error {
	if b.closed {
		return ErrClosed
	}
	i, err := b.table.Normalize(k)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return b.replace(ctx, i, d)
}

// SetByID replaces the document stored under id with d.
func (b *Base) SetByID(ctx context.Context, id string, d *document.Document) error {
	if b.closed {
		return ErrClosed
	}
	k, ok := b.table.OffsetOf(id)
	if !ok {
		return notFound(id)
	}
	return b.replace(ctx, k, d)
}

// SetAttrByID updates one attribute of the document stored under id.
// Setting the id attribute renames the document in place.
func (b *Base) SetAttrByID(ctx context.Context, id, name string, value any) error {
	d, err := b.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := document.SetAttr(d, name, value); err != nil {
		return err
	}
	return b.SetByID(ctx, id, d)
}

func (b *Base) replace(ctx context.Context, k int, d *document.Document) error {
	if d == nil {
		return fmt.Errorf("storage: cannot store nil document at offset %d", k)
	}
	old, _ := b.table.IDAt(k)
	if d.ID == old {
		return b.store.Put(ctx, d)
	}

	if b.table.Contains(d.ID) {
		return duplicate(d.ID)
	}
	if err := b.rename(ctx, old, d); err != nil {
		return err
	}
	if err := b.table.Replace(k, d.ID); err != nil {
		return err
	}
	return b.autoSync(ctx)
}

func (b *Base) rename(ctx context.Context, old string, d *document.Document) error {
	if r, ok := b.store.(Replacer); ok {
		return r.Replace(ctx, old, d)
	}
	if err := b.store.Put(ctx, d); err != nil {
		return err
	}
	return b.store.Delete(ctx, old)
}

// DeleteByOffset removes the document at offset k.
func (b *Base) DeleteByOffset(ctx context.Context, k int) error {
	id, err := b.IDAt(k)
	if err != nil {
		return err
	}
	return b.DeleteByID(ctx, id)
}

// DeleteByID removes the document stored under id.
func (b *Base) DeleteByID(ctx context.Context, id string) error {
	if b.closed {
		return ErrClosed
	}
	if !b.table.Contains(id) {
		return notFound(id)
	}
	if err := b.store.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := b.table.RemoveID(id); err != nil {
		return err
	}
	return b.autoSync(ctx)
}

// DeleteByIDs removes every id. Unknown ids fail the call before anything
// is deleted. Repeated ids are removed once.
func (b *Base) DeleteByIDs(ctx context.Context, ids []string) error {
	if b.closed {
		return ErrClosed
	}
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !b.table.Contains(id) {
			return notFound(id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return nil
	}
	if err := b.store.Delete(ctx, uniq...); err != nil {
		return err
	}
	if err := b.table.RemoveMany(uniq); err != nil {
		return err
	}
	return b.autoSync(ctx)
}

// Insert places d before offset k. k may equal Len to append; negative
// offsets count from the end.
func (b *Base) Insert(ctx context.Context, k int, d *document.Document) error {
	if b.closed {
		return ErrClosed
	}
	n := b.table.Len()
	i := k
	if i < 0 {
		i += n
	}
	if i < 0 || i > n {
		return fmt.Errorf("%w: %w", ErrNotFound, &offset2id.OffsetError{Offset: k, Len: n})
	}
	if b.table.Contains(d.ID) {
		return duplicate(d.ID)
	}
	if err := b.store.Put(ctx, d); err != nil {
		return err
	}
	if err := b.table.InsertAt(k, d.ID); err != nil {
		return err
	}
	return b.autoSync(ctx)
}

// Extend appends docs in order. Duplicate ids, within docs or against the
// collection, fail the call before anything is written.
func (b *Base) Extend(ctx context.Context, docs []*document.Document) error {
	if b.closed {
		return ErrClosed
	}
	if len(docs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, dup := seen[d.ID]; dup || b.table.Contains(d.ID) {
			return duplicate(d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	if err := b.store.Put(ctx, docs...); err != nil {
		return err
	}
	for _, d := range docs {
		if err := b.table.Append(d.ID); err != nil {
			return err
		}
	}
	return b.autoSync(ctx)
}

// Clear removes every document.
func (b *Base) Clear(ctx context.Context) error {
	if b.closed {
		return ErrClosed
	}
	if ids := b.table.IDs(); len(ids) > 0 {
		if err := b.store.Delete(ctx, ids...); err != nil {
			return err
		}
	}
	b.table.Clear()
	return b.Sync(ctx)
}

// Scan yields documents in storage-native order.
func (b *Base) Scan(ctx context.Context) iter.Seq2[*document.Document, error] {
	if b.closed {
		return func(yield func(*document.Document, error) bool) { yield(nil, ErrClosed) }
	}
	return b.store.Scan(ctx)
}

// All yields documents in offset order, fetching them in batches.
func (b *Base) All(ctx context.Context) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		if b.closed {
			yield(nil, ErrClosed)
			return
		}
		ids := b.table.IDs()
		for start := 0; start < len(ids); start += b.opts.ScanBatchSize {
			end := min(start+b.opts.ScanBatchSize, len(ids))
			docs, err := b.store.GetMany(ctx, ids[start:end])
			if err != nil {
				yield(nil, err)
				return
			}
			for _, d := range docs {
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

// Verify compares the in-memory table with the stored payloads.
func (b *Base) Verify(ctx context.Context) (offset2id.Report, error) {
	if b.closed {
		return offset2id.Report{}, ErrClosed
	}
	keys, err := b.store.Keys(ctx)
	if err != nil {
		return offset2id.Report{}, err
	}
	return offset2id.Verify(b.table.IDs(), keys), nil
}

// Repair reconciles the table with the stored payloads and persists it. The
// returned report describes the state before the repair.
func (b *Base) Repair(ctx context.Context) (offset2id.Report, error) {
	if b.closed {
		return offset2id.Report{}, ErrClosed
	}
	keys, err := b.store.Keys(ctx)
	if err != nil {
		return offset2id.Report{}, err
	}
	ids := b.table.IDs()
	report := offset2id.Verify(ids, keys)
	if report.OK() {
		return report, nil
	}
	if err := b.table.Rebuild(offset2id.Reconcile(ids, keys)); err != nil {
		return report, err
	}
	b.opts.Logger.InfoContext(ctx, "offset2id repaired",
		"len", b.table.Len(),
		"orphans", len(report.Orphans),
		"missing", len(report.Missing),
	)
	return report, b.Sync(ctx)
}

// Sync persists the offset2id table.
func (b *Base) Sync(ctx context.Context) error {
	if b.closed {
		return ErrClosed
	}
	return b.store.SaveOffset2ID(ctx, b.table.IDs())
}

// Close persists the table and closes the payload store.
func (b *Base) Close() error {
	if b.closed {
		return nil
	}
	err := b.Sync(context.Background())
	b.closed = true
	return errors.Join(err, b.store.Close())
}

func (b *Base) autoSync(ctx context.Context) error {
	if !b.opts.AutoSync {
		return nil
	}
	return b.Sync(ctx)
}

func notFound(id string) error {
	return fmt.Errorf("%w: id %q", ErrNotFound, id)
}

func duplicate(id string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateID, id)
}
