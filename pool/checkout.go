package pool

import (
	"context"
	"errors"
	"weak"
)

// ErrPoolClosed is returned by a Checkout when the pool it targets has
// been Closed while the checkout was still waiting.
var ErrPoolClosed = errors.New("pool: closed")

// Checkout represents one in-flight attempt to obtain a connection for a
// key: try the idle list first, and if that comes up empty, park until
// either a returning connection is handed to this waiter or the caller
// gives up (spec.md §4.9). A Checkout must have Close called exactly once
// it is done being waited on, whether or not it ever resolved — Wait does
// this for you; direct Poll callers must call it themselves.
type Checkout[T Readier] struct {
	pool   *Pool[T]
	key    Key
	cancel *cancelToken
	parked *waiter[T]
	closed bool
}

func newCheckout[T Readier](p *Pool[T], key Key) *Checkout[T] {
	return &Checkout[T]{pool: p, key: key, cancel: newCancelToken()}
}

// Key returns the key this checkout is waiting on.
func (c *Checkout[T]) Key() Key {
	return c.key
}

// Poll makes one non-blocking attempt to resolve the checkout. The first
// call tries the idle list directly; if that misses, it registers this
// checkout as a parked waiter and returns (nil, false, nil) rather than
// blocking. Subsequent calls check whether the parked handoff has fired
// yet, still without blocking. Most callers want Wait instead.
func (c *Checkout[T]) Poll(ctx context.Context) (*Pooled[T], bool, error) {
	if c.closed {
		return nil, false, ErrPoolClosed
	}

	if c.parked != nil {
		select {
		case entry, ok := <-c.parked.ch:
			if !ok {
				return nil, false, ErrPoolClosed
			}
			return c.entryToPooled(entry), true, nil
		default:
			return nil, false, nil
		}
	}

	if pooled, ok := c.pool.take(ctx, c.key); ok {
		return pooled, true, nil
	}

	c.park()
	return nil, false, nil
}

func (c *Checkout[T]) entryToPooled(entry *Entry[T]) *Pooled[T] {
	if c.key.Ver == VersionH1 {
		entry.status.setBusy()
	}
	return &Pooled[T]{entry: entry, key: c.key, pool: weak.Make(c.pool.inner)}
}

func (c *Checkout[T]) park() {
	if c.parked != nil || c.cancel.IsCanceled() {
		return
	}
	w := newWaiter[T]()
	w.cancel = c.cancel
	c.pool.inner.park(c.key, w)
	c.parked = &w
}

// Wait blocks until a connection is available, ctx is canceled, or the
// pool is closed, then tears down any parked waiter state either way.
func (c *Checkout[T]) Wait(ctx context.Context) (*Pooled[T], error) {
	defer c.Close()

	pooled, ok, err := c.Poll(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return pooled, nil
	}

	select {
	case entry, chOk := <-c.parked.ch:
		if !chOk {
			return nil, ErrPoolClosed
		}
		return c.entryToPooled(entry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close cancels any parked waiter this checkout registered and sweeps it
// out of the pool's queue. Idempotent; Wait calls this automatically.
func (c *Checkout[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel.Cancel()
	c.pool.inner.cleanParked(c.key)
}
