// Package prometheus provides a Prometheus implementation of
// docarray.MetricsCollector.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/docarray"
)

const namespace = "docarray"

// Collector records DocumentArray operations as Prometheus metrics. Every
// series carries the collection label.
type Collector struct {
	collection string

	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	docs     *prometheus.CounterVec
	findings *prometheus.CounterVec
	repairs  *prometheus.CounterVec
	length   *prometheus.GaugeVec
}

var _ docarray.MetricsCollector = (*Collector)(nil)

// NewCollector registers the docarray metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer. Collectors for several collections must
// share one registry through Labeled.
func NewCollector(reg prometheus.Registerer, collection string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		collection: collection,
		ops: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total DocumentArray operations",
			},
			[]string{"collection", "operation", "status"}, // status: success/error
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_latency_seconds",
				Help:      "DocumentArray operation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collection", "operation"},
		),
		docs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Documents touched by successful operations",
			},
			[]string{"collection", "operation"},
		),
		findings: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offset2id_findings_total",
				Help:      "Duplicate, orphan and missing ids found by verification",
			},
			[]string{"collection"},
		),
		repairs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offset2id_repairs_total",
				Help:      "Offset2ID repairs that changed the table",
			},
			[]string{"collection"},
		),
		length: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "documents",
				Help:      "Number of top-level documents",
			},
			[]string{"collection"},
		),
	}
}

// Labeled returns a collector sharing the registered metrics under another
// collection label.
func (c *Collector) Labeled(collection string) *Collector {
	cc := *c
	cc.collection = collection
	return &cc
}

// RecordOperation implements docarray.MetricsCollector.
func (c *Collector) RecordOperation(op string, docs int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.ops.WithLabelValues(c.collection, op, status).Inc()
	c.latency.WithLabelValues(c.collection, op).Observe(duration.Seconds())
	if err == nil && docs > 0 {
		c.docs.WithLabelValues(c.collection, op).Add(float64(docs))
	}
}

// RecordVerify implements docarray.MetricsCollector.
func (c *Collector) RecordVerify(findings int, repaired bool) {
	c.findings.WithLabelValues(c.collection).Add(float64(findings))
	if repaired {
		c.repairs.WithLabelValues(c.collection).Inc()
	}
}

// RecordLen implements docarray.MetricsCollector.
func (c *Collector) RecordLen(n int) {
	c.length.WithLabelValues(c.collection).Set(float64(n))
}
