// Package resource bounds the load a collection puts on remote storage:
// memory held by caches, concurrent requests, request rate and IO throughput.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentRequests is the maximum number of in-flight remote requests.
	// If 0, defaults to 8.
	MaxConcurrentRequests int64

	// RequestsPerSecond caps the remote request rate. If 0, unlimited.
	RequestsPerSecond float64

	// IOLimitBytesPerSec is the maximum IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, concurrency, rate).
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	reqSem   *semaphore.Weighted
	inFlight atomic.Int64

	// Rate
	reqLimiter *rate.Limiter
	ioLimiter  *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 8
	}

	c := &Controller{
		cfg:    cfg,
		reqSem: semaphore.NewWeighted(cfg.MaxConcurrentRequests),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := max(int(cfg.RequestsPerSecond), 1)
		c.reqLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireRequest waits for the request rate limit and a free request slot.
// Every successful call must be paired with ReleaseRequest.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.reqLimiter != nil {
		if err := c.reqLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := c.reqSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireRequest attempts to reserve a request slot without blocking.
// The rate limit is not consulted.
func (c *Controller) TryAcquireRequest() bool {
	if c == nil {
		return true
	}
	if !c.reqSem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseRequest releases a request slot.
func (c *Controller) ReleaseRequest() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.reqSem.Release(1)
}

// InFlight returns the number of held request slots.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Do runs fn while holding a request slot.
func (c *Controller) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.AcquireRequest(ctx); err != nil {
		return err
	}
	defer c.ReleaseRequest()
	return fn(ctx)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN rejects requests above the burst size, so large buffers wait in chunks.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
