package docarray

import (
	"sync/atomic"
	"time"
)

// Operation names passed to MetricsCollector.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpExtend = "extend"
	OpInsert = "insert"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems. A
// Prometheus implementation lives in metrics/prometheus.
type MetricsCollector interface {
	// RecordOperation is called after every Get, Set, Delete, Extend and
	// Insert. docs is the number of documents the call touched.
	RecordOperation(op string, docs int, duration time.Duration, err error)

	// RecordVerify is called after Verify and Repair with the number of
	// findings (duplicates, orphans and missing ids).
	RecordVerify(findings int, repaired bool)

	// RecordLen reports the collection length after a mutation.
	RecordLen(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordVerify(int, bool)                           {}
func (NoopMetricsCollector) RecordLen(int)                                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	GetCount       atomic.Int64
	GetErrors      atomic.Int64
	GetTotalNanos  atomic.Int64
	SetCount       atomic.Int64
	SetErrors      atomic.Int64
	SetTotalNanos  atomic.Int64
	DeleteCount    atomic.Int64
	DeleteErrors   atomic.Int64
	ExtendCount    atomic.Int64
	ExtendDocs     atomic.Int64
	ExtendErrors   atomic.Int64
	InsertCount    atomic.Int64
	InsertErrors   atomic.Int64
	VerifyCount    atomic.Int64
	VerifyFindings atomic.Int64
	RepairCount    atomic.Int64
	Len            atomic.Int64
}

// RecordOperation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOperation(op string, docs int, duration time.Duration, err error) {
	failed := int64(0)
	if err != nil {
		failed = 1
	}
	switch op {
	case OpGet:
		b.GetCount.Add(1)
		b.GetErrors.Add(failed)
		b.GetTotalNanos.Add(duration.Nanoseconds())
	case OpSet:
		b.SetCount.Add(1)
		b.SetErrors.Add(failed)
		b.SetTotalNanos.Add(duration.Nanoseconds())
	case OpDelete:
		b.DeleteCount.Add(1)
		b.DeleteErrors.Add(failed)
	case OpExtend:
		b.ExtendCount.Add(1)
		b.ExtendErrors.Add(failed)
		if err == nil {
			b.ExtendDocs.Add(int64(docs))
		}
	case OpInsert:
		b.InsertCount.Add(1)
		b.InsertErrors.Add(failed)
	}
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(findings int, repaired bool) {
	b.VerifyCount.Add(1)
	b.VerifyFindings.Add(int64(findings))
	if repaired {
		b.RepairCount.Add(1)
	}
}

// RecordLen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLen(n int) {
	b.Len.Store(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GetCount:       b.GetCount.Load(),
		GetErrors:      b.GetErrors.Load(),
		GetAvgNanos:    avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		SetCount:       b.SetCount.Load(),
		SetErrors:      b.SetErrors.Load(),
		SetAvgNanos:    avg(b.SetTotalNanos.Load(), b.SetCount.Load()),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		ExtendCount:    b.ExtendCount.Load(),
		ExtendDocs:     b.ExtendDocs.Load(),
		ExtendErrors:   b.ExtendErrors.Load(),
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		VerifyCount:    b.VerifyCount.Load(),
		VerifyFindings: b.VerifyFindings.Load(),
		RepairCount:    b.RepairCount.Load(),
		Len:            b.Len.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GetCount       int64
	GetErrors      int64
	GetAvgNanos    int64
	SetCount       int64
	SetErrors      int64
	SetAvgNanos    int64
	DeleteCount    int64
	DeleteErrors   int64
	ExtendCount    int64
	ExtendDocs     int64
	ExtendErrors   int64
	InsertCount    int64
	InsertErrors   int64
	VerifyCount    int64
	VerifyFindings int64
	RepairCount    int64
	Len            int64
}
