// Package pool implements the connection cache, waiter rendezvous point,
// and Busy/Idle/Disabled lifecycle manager that sits inside an HTTP client
// runtime between "I need a connection to this origin" and "dial one"
// (spec.md §1). It never dials, negotiates TLS, or speaks a wire protocol
// itself — callers supply a Readier and get back checkout/return semantics.
package pool

import (
	"context"
	"time"
	"weak"
)

// Pool is the caller-facing handle into the connection cache. It is cheap
// to copy/share (the teacher's clients pass it by pointer down call
// stacks); all mutable state lives behind poolInner's mutex.
type Pool[T Readier] struct {
	inner *poolInner[T]
}

// New creates a pool. timeout is the idle-age expiration window; a nil
// timeout disables age-based expiry entirely, leaving the readiness probe
// as the only gate on reuse (spec.md §4.7, §9).
func New[T Readier](timeout *time.Duration) *Pool[T] {
	return &Pool[T]{inner: newPoolInner[T](timeout)}
}

// Checkout creates a checkout for key without touching pool state; its
// first Poll (or Wait) tries the idle list and parks on a miss
// (spec.md §4.9). The returned Checkout owns its own cleanup and must
// eventually have Close called if Wait is never driven to completion.
func (p *Pool[T]) Checkout(key Key) *Checkout[T] {
	return newCheckout(p, key)
}

// Pooled installs a freshly dialed value into the pool under key and
// returns a handle to it. For VersionH1 keys the handle's status is Busy
// and the caller is expected to call Idle() once it is done with the
// value, exactly like any other checked-out connection. For VersionH2 keys
// the value is immediately made available to the rest of the pool: a clone
// sharing the handle's status cell goes through put, so any already-parked
// waiters for the key are handed a clone of it, it is pushed onto idle,
// and (while the pool is enabled) the shared status reads Idle, since a
// multiplexed connection can serve the installer and other callers at once
// (spec.md §4.5).
func (p *Pool[T]) Pooled(key Key, value T) *Pooled[T] {
	entry := newEntry(value)
	pooled := &Pooled[T]{
		entry: entry,
		key:   key,
		pool:  weak.Make(p.inner),
	}
	if key.Ver != VersionH1 {
		p.inner.put(key, entry.clone())
	}
	return pooled
}

// Connecting records that a dial for key is starting, so concurrent
// callers racing the same multiplexed key can coordinate instead of each
// opening their own socket (spec.md §4.10).
func (p *Pool[T]) Connecting(key Key) {
	p.inner.markConnecting(key)
}

// ConnectingDone clears the connecting hint for key, whether the dial
// succeeded or failed.
func (p *Pool[T]) ConnectingDone(key Key) {
	p.inner.clearConnecting(key)
}

// IsConnecting reports whether some caller has already signaled Connecting
// for key and not yet cleared it.
func (p *Pool[T]) IsConnecting(key Key) bool {
	return p.inner.isConnecting(key)
}

// Close disables the pool: no further entries are accepted, every idle
// entry still held is marked Disabled, and every parked waiter is woken
// with a closed channel so it unparks with an error rather than hanging
// forever (spec.md §6).
func (p *Pool[T]) Close() {
	p.inner.disable()
}

// Snapshot returns a point-in-time view of pool occupancy for
// pool/metrics.go and for external stats publishing (redisclient).
func (p *Pool[T]) Snapshot() Stats {
	perKey, s := p.inner.snapshot()
	out := Stats{
		Checkouts:      s.checkouts,
		Reuses:         s.reuses,
		Expirations:    s.expirations,
		BrokenDiscards: s.brokenDiscards,
		Keys:           make(map[string]KeyStats, len(perKey)),
	}
	for k, v := range perKey {
		out.Keys[k.String()] = KeyStats{Idle: v.Idle, Parked: v.Parked, Connecting: v.Connecting}
	}
	return out
}

// take is the non-parking half of a checkout, used by Checkout.Poll.
func (p *Pool[T]) take(ctx context.Context, key Key) (*Pooled[T], bool) {
	entry, ok := p.inner.take(ctx, key)
	if !ok {
		return nil, false
	}
	if key.Ver == VersionH1 {
		entry.status.setBusy()
	}
	return &Pooled[T]{entry: entry, key: key, pool: weak.Make(p.inner)}, true
}

// Stats is the exported, json-friendly shape of a pool snapshot.
type Stats struct {
	Checkouts      uint64              `json:"checkouts"`
	Reuses         uint64              `json:"reuses"`
	Expirations    uint64              `json:"expirations"`
	BrokenDiscards uint64              `json:"broken_discards"`
	Keys           map[string]KeyStats `json:"keys"`
}

// KeyStats is the per-key slice of a Stats snapshot.
type KeyStats struct {
	Idle       int  `json:"idle"`
	Parked     int  `json:"parked"`
	Connecting bool `json:"connecting"`
}
