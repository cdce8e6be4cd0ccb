package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the
// memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean unlimited, except Uploads,
// which defaults to 1.
type Config struct {
	// MemoryLimit bounds reserved bytes (tableau buffers and snapshot
	// encode/decode buffers).
	MemoryLimit int64
	// Uploads bounds concurrent snapshot writes.
	Uploads int64
	// IOBytesPerSec throttles snapshot reads and writes.
	IOBytesPerSec int64
}

// Controller hands out memory reservations, upload slots and IO tokens.
// A nil *Controller is unlimited.
type Controller struct {
	limit   int64
	mem     *semaphore.Weighted // nil if unlimited
	used    atomic.Int64
	uploads *semaphore.Weighted
	io      *rate.Limiter // nil if unlimited
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{
		limit:   max(cfg.MemoryLimit, 0),
		uploads: semaphore.NewWeighted(max(cfg.Uploads, 1)),
	}
	if cfg.MemoryLimit > 0 {
		c.mem = semaphore.NewWeighted(cfg.MemoryLimit)
	}
	if cfg.IOBytesPerSec > 0 {
		c.io = rate.NewLimiter(rate.Limit(cfg.IOBytesPerSec), int(cfg.IOBytesPerSec))
	}
	return c
}

// Reservation is a block of reserved memory. Release is idempotent.
type Reservation struct {
	c        *Controller
	bytes    int64
	released atomic.Bool
}

// Reserve reserves bytes without blocking. The error wraps
// ErrMemoryLimitExceeded.
func (c *Controller) Reserve(bytes int64) (*Reservation, error) {
	bytes = max(bytes, 0)
	if c == nil {
		return &Reservation{bytes: bytes}, nil
	}
	if c.mem != nil && bytes > 0 && !c.mem.TryAcquire(bytes) {
		return nil, fmt.Errorf("%w: requested %d bytes, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.used.Load(), c.limit)
	}
	c.used.Add(bytes)
	return &Reservation{c: c, bytes: bytes}, nil
}

// Bytes returns the reserved size.
func (r *Reservation) Bytes() int64 {
	if r == nil {
		return 0
	}
	return r.bytes
}

// Release returns the memory to the controller.
func (r *Reservation) Release() {
	if r == nil || r.c == nil || r.released.Swap(true) {
		return
	}
	if r.c.mem != nil && r.bytes > 0 {
		r.c.mem.Release(r.bytes)
	}
	r.c.used.Add(-r.bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// MemoryLimit returns the memory limit, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// Upload blocks until an upload slot is free. The returned func frees it.
func (c *Controller) Upload(ctx context.Context) (func(), error) {
	if c == nil {
		return func() {}, ctx.Err()
	}
	if err := c.uploads.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once atomic.Bool
	return func() {
		if !once.Swap(true) {
			c.uploads.Release(1)
		}
	}, nil
}

// WaitIO blocks until the IO limit admits n bytes. Requests larger than the
// burst are split.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	if c == nil || c.io == nil {
		return nil
	}
	burst := c.io.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := c.io.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
