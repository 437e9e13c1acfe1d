package pool

import (
	"weak"
)

// Pooled is a handle to a value currently checked out of (or just
// installed into) the pool. It holds only a weak reference back to the
// pool's inner state (spec.md §4.8, §9): if the pool itself has been
// dropped, a Pooled outlives it harmlessly and degrades Idle to Disable,
// since there is nothing left to return the connection to.
type Pooled[T Readier] struct {
	entry *Entry[T]
	key   Key
	pool  weak.Pointer[poolInner[T]]
}

// Value returns the underlying connection value.
func (p *Pooled[T]) Value() T {
	return p.entry.value
}

// Reused reports whether this value has served a prior checkout.
func (p *Pooled[T]) Reused() bool {
	return p.entry.reused
}

// Status reports the current lifecycle state as seen right now. For
// Http2 values this can change concurrently through any other clone
// sharing the same underlying connection.
func (p *Pooled[T]) Status() string {
	state, _ := p.entry.status.snapshot()
	switch state {
	case stateIdle:
		return "idle"
	case stateBusy:
		return "busy"
	case stateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Busy marks the value as in-use. Callers do this before issuing a
// request over an Http1 connection; for Http2 it is rarely needed since
// multiple requests can be in flight at once, but is provided for parity.
func (p *Pooled[T]) Busy() {
	p.entry.status.setBusy()
}

// Idle returns the value to the pool, available for the next checkout
// (spec.md §4.8). If the value is already Idle, this is a no-op. If the
// owning pool is gone, this degrades to Disable:
// there is nowhere left to return the connection to, so it is simply
// marked unusable rather than silently leaked as "idle forever".
func (p *Pooled[T]) Idle() {
	if state, _ := p.entry.status.snapshot(); state == stateIdle {
		return
	}
	inner := p.pool.Value()
	if inner == nil {
		p.entry.status.setDisabled()
		return
	}
	if !inner.put(p.key, p.entry) {
		p.entry.status.setDisabled()
	}
}

// Disable permanently retires the value: it will never be handed out
// again, and any clone (Http2) sharing its status cell observes Disabled
// immediately (spec.md §4.8).
func (p *Pooled[T]) Disable() {
	p.entry.status.setDisabled()
}

// SetKeepAlive applies a keep-alive decision to the value: false disables
// it so it is never reused, true leaves its state unchanged.
func (p *Pooled[T]) SetKeepAlive(enabled bool) {
	if !enabled {
		p.Disable()
	}
}
