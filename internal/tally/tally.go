// Package tally implements the shared grand total that every worker of a
// generation aggregates into.
//
// The total is a plain integer guarded by its own mutex. It is never
// reconstructed from rendered text; display strings are derived from it.
package tally

import (
	"sync"
	"sync/atomic"
)

// Counter is a worker-private progress counter. Only the owning worker
// writes it, and only from inside Total.Advance; any goroutine may read it.
type Counter struct {
	n atomic.Int64
}

// Value returns the current counter value.
func (c *Counter) Value() int {
	return int(c.n.Load())
}

// Total is the shared accumulator for one generation.
type Total struct {
	mu sync.Mutex
	n  int
}

// New returns a zeroed Total.
func New() *Total {
	return &Total{}
}

// Advance increments own and the total by one as a single step and returns
// both new values. No concurrent Advance can interleave between the two
// increments.
func (t *Total) Advance(own *Counter) (ownValue, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ownValue = int(own.n.Add(1))
	t.n++
	return ownValue, t.n
}

// Value returns the current total.
func (t *Total) Value() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Reset sets the total back to zero.
func (t *Total) Reset() {
	t.mu.Lock()
	t.n = 0
	t.mu.Unlock()
}
