package pool

import "sync/atomic"

// cancelToken lets a Checkout tell the pool it no longer wants the entry it
// parked for, without closing the handoff channel — only Pool.Close closes
// that channel, and a Checkout reads a closed channel as ErrPoolClosed.
// put checks the flag before sending, so a canceled waiter is skipped and
// the entry goes to the next waiter in line instead (spec.md §9, resolving the "how should parking be canceled"
// open question the way the pool it was ported from does).
type cancelToken struct {
	canceled atomic.Bool
}

func newCancelToken() *cancelToken {
	return &cancelToken{}
}

func (c *cancelToken) Cancel() {
	c.canceled.Store(true)
}

func (c *cancelToken) IsCanceled() bool {
	return c.canceled.Load()
}

// waiter is one parked Checkout's slot in a key's FIFO queue. The channel
// is buffered to depth 1 so a handoff from put() never blocks regardless of
// whether the waiter is actively receiving.
type waiter[T any] struct {
	ch     chan *Entry[T]
	cancel *cancelToken
}

func newWaiter[T any]() waiter[T] {
	return waiter[T]{ch: make(chan *Entry[T], 1), cancel: newCancelToken()}
}
