package docarray

import (
	"log/slog"

	"github.com/hupe1980/docarray/document"
	"github.com/hupe1980/docarray/traversal"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	schema           document.Schema
	traverser        traversal.Traverser
}

// Option configures a DocumentArray.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &docarray.BasicMetricsCollector{}
//	da := docarray.NewMemory(docarray.WithMetricsCollector(metrics))
//	// ... use da ...
//	stats := metrics.GetStats()
//	fmt.Printf("Sets: %d, Avg latency: %dns\n", stats.SetCount, stats.SetAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := docarray.NewJSONLogger(slog.LevelInfo)
//	da := docarray.New(backend, docarray.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSchema sets the schema used to decide whether the second component
// of a pair index names an attribute. Default: document.DefaultSchema.
func WithSchema(s document.Schema) Option {
	return func(o *options) {
		if s != nil {
			o.schema = s
		}
	}
}

// WithTraverser sets the resolver of "@path" indices.
// Default: traversal.Default.
func WithTraverser(t traversal.Traverser) Option {
	return func(o *options) {
		if t != nil {
			o.traverser = t
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		schema:           document.DefaultSchema,
		traverser:        traversal.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
