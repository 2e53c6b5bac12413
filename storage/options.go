package storage

import (
	"io"
	"log/slog"
)

// Options configures a Base.
type Options struct {
	// RepairOnLoad reconciles a diverged offset2id table on open instead of
	// failing with offset2id.ErrDivergence.
	RepairOnLoad bool

	// AutoSync persists the offset2id table after every mutation. Without it
	// the table is persisted by Sync and Close.
	AutoSync bool

	// ScanBatchSize bounds GetMany calls issued by All.
	ScanBatchSize int

	Logger *slog.Logger
}

// DefaultOptions contains the default Base options.
var DefaultOptions = Options{
	ScanBatchSize: 256,
	Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
}

// WithRepairOnLoad enables reconciliation of a diverged table on open.
func WithRepairOnLoad() func(*Options) {
	return func(o *Options) { o.RepairOnLoad = true }
}

// WithAutoSync persists the table after every mutation.
func WithAutoSync() func(*Options) {
	return func(o *Options) { o.AutoSync = true }
}

// WithLogger sets the logger used for divergence and repair events.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
