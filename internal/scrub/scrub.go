// Package scrub keeps interactive time-cursor queries honest: when a
// user drags the cursor, several point-in-time queries may be in
// flight at once, and a slow early response must never overwrite the
// result of a later one.
package scrub

import (
	"context"
	"sync"
)

// Coalescer issues queries with monotonically increasing sequence
// numbers, cancels the previous in-flight query when a new one starts,
// and delivers a result only while its query is still the newest.
type Coalescer[T any] struct {
	mu        sync.Mutex
	seq       uint64
	delivered uint64
	cancel    context.CancelFunc
}

func NewCoalescer[T any]() *Coalescer[T] {
	return &Coalescer[T]{}
}

// Go starts query in its own goroutine and calls deliver with the
// result if, by the time the query returns, no newer query has been
// started or delivered. Superseded queries get their context canceled
// so they can abandon work mid-flight.
func (c *Coalescer[T]) Go(ctx context.Context, query func(context.Context) (T, error), deliver func(T, error)) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	qctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		defer cancel()
		result, err := query(qctx)

		c.mu.Lock()
		stale := seq < c.seq || seq <= c.delivered
		if !stale {
			c.delivered = seq
		}
		c.mu.Unlock()

		if !stale {
			deliver(result, err)
		}
	}()
}
