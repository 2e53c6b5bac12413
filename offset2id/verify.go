package offset2id

import (
	"errors"
	"fmt"
)

// ErrDivergence is returned when the table and the payload store disagree.
var ErrDivergence = errors.New("offset2id diverged from storage")

// Report describes how a table compares to the ids held by a payload store.
type Report struct {
	TableLen int `json:"table_len" yaml:"table_len"`
	StoreLen int `json:"store_len" yaml:"store_len"`

	// Duplicates are ids listed more than once in the table.
	Duplicates []string `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	// Orphans are table ids with no stored payload.
	Orphans []string `json:"orphans,omitempty" yaml:"orphans,omitempty"`
	// Missing are stored ids the table does not list.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`

	// Fingerprint hashes the verified table in offset order.
	Fingerprint uint64 `json:"fingerprint" yaml:"fingerprint"`
}

// OK reports whether no divergence was found.
func (r Report) OK() bool {
	return r.TableLen == r.StoreLen && len(r.Duplicates) == 0 && len(r.Orphans) == 0 && len(r.Missing) == 0
}

// Err returns a *DivergenceError, or nil when the report is clean.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &DivergenceError{Report: r}
}

// DivergenceError wraps a report with at least one finding.
type DivergenceError struct {
	Report Report
}

func (e *DivergenceError) Error() string {
	r := e.Report
	return fmt.Sprintf("%v: table has %d ids, store has %d (duplicates=%d orphans=%d missing=%d)",
		ErrDivergence, r.TableLen, r.StoreLen, len(r.Duplicates), len(r.Orphans), len(r.Missing))
}

func (e *DivergenceError) Unwrap() error { return ErrDivergence }

// Verify compares ids, the raw persisted id list, against stored, the ids
// found in the payload store in storage-native order.
func Verify(ids, stored []string) Report {
	r := Report{TableLen: len(ids), StoreLen: len(stored), Fingerprint: Fingerprint(ids)}

	inStore := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		inStore[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			r.Duplicates = append(r.Duplicates, id)
			continue
		}
		seen[id] = struct{}{}
		if _, ok := inStore[id]; !ok {
			r.Orphans = append(r.Orphans, id)
		}
	}

	for _, id := range stored {
		if _, ok := seen[id]; !ok {
			r.Missing = append(r.Missing, id)
		}
	}
	return r
}

// Reconcile returns the repaired id order: the surviving table order with
// duplicates and orphans dropped, followed by missing ids in storage order.
func Reconcile(ids, stored []string) []string {
	inStore := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		inStore[id] = struct{}{}
	}

	out := make([]string, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := inStore[id]; !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range stored {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
