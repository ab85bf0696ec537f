// Package resource bounds the engine's use of shared machine resources:
// how many observation workers may score positions at once, and how fast
// snapshot bytes may move through the filesystem.
package resource

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent observation
	// workers. If 0, defaults to GOMAXPROCS. A value of 1 forces
	// sequential scoring.
	MaxWorkers int64

	// IOLimitBytesPerSec caps snapshot read and write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces the configured limits. A nil Controller is valid
// and enforces nothing.
type Controller struct {
	cfg Config

	workerSem *semaphore.Weighted
	active    atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = int64(runtime.GOMAXPROCS(0))
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// MaxWorkers returns the configured worker limit. A nil controller
// reports 1.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker reserves a worker slot, blocking until one is free or
// ctx is canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workerSem.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseWorker returns a previously acquired slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
	c.active.Add(-1)
}

// ActiveWorkers returns the number of currently reserved slots.
func (c *Controller) ActiveWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// ThrottleIO waits until the IO budget allows bytes more to move.
func (c *Controller) ThrottleIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}
	// WaitN cannot exceed the burst size in a single call.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		chunk := bytes
		if chunk > burst {
			chunk = burst
		}
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		bytes -= chunk
	}
	return nil
}
