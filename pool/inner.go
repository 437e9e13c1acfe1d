package pool

import (
	"context"
	"sync"
	"time"
)

// poolInner holds the actual pool state: the idle cache, the parked-waiter
// rendezvous table, and the connecting hint set (spec.md §3). Every method
// here runs under mu; callers never touch these maps directly.
type poolInner[T Readier] struct {
	mu sync.Mutex

	idle       map[Key][]*Entry[T]
	parked     map[Key][]waiter[T]
	connecting map[Key]struct{}

	enabled bool
	timeout *time.Duration

	stats stats
}

// stats accumulates the lifetime counters pool/metrics.go exposes. Plain
// uint64s guarded by the same mutex as everything else — the pool already
// serializes every mutation, a separate atomic would just be redundant.
type stats struct {
	checkouts  uint64
	reuses     uint64
	expirations uint64
	brokenDiscards uint64
}

func newPoolInner[T Readier](timeout *time.Duration) *poolInner[T] {
	return &poolInner[T]{
		idle:       make(map[Key][]*Entry[T]),
		parked:     make(map[Key][]waiter[T]),
		connecting: make(map[Key]struct{}),
		enabled:    true,
		timeout:    timeout,
	}
}

// put returns an entry to the pool: a value being checked back in, or a
// freshly dialed value being installed for the first time (spec.md §4.5,
// §4.6). A disabled pool accepts nothing and put returns false without
// touching the entry. Otherwise it marks the entry Idle first, then tries
// to satisfy any already-parked waiters for the key before falling back to
// the idle list.
//
// Http1 keys hand the entry, unshared, to the first live (non-canceled)
// waiter and stop there — an exclusive connection can only go to one place.
// Http2 keys hand a clone to every live waiter in the queue, draining it
// completely, and then still append the original to idle: a multiplexed
// connection is never "consumed" by being shared out.
func (p *poolInner[T]) put(key Key, entry *Entry[T]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return false
	}

	entry.status.setIdle(time.Now())
	consumed := false

	if waiters := p.parked[key]; len(waiters) > 0 {
		if key.Ver == VersionH1 {
			i := 0
			for ; i < len(waiters); i++ {
				w := waiters[i]
				if w.cancel.IsCanceled() {
					continue
				}
				w.ch <- entry
				consumed = true
				i++
				break
				// An earlier version of this loop tried the handoff and
				// fell through to the next waiter on failure instead of
				// assuming a buffered send always succeeds:
				//
				//   select {
				//   case w.ch <- entry:
				//       consumed = true
				//   default:
				//       trace.discard(w)
				//       continue
				//   }
				//
				// kept as explicit cancellation-check-then-send instead,
				// since a cap-1 channel that has never been sent to cannot
				// fail this send.
			}
			remaining := waiters[i:]
			if len(remaining) == 0 {
				delete(p.parked, key)
			} else {
				p.parked[key] = append([]waiter[T]{}, remaining...)
			}
		} else {
			for _, w := range waiters {
				if w.cancel.IsCanceled() {
					continue
				}
				w.ch <- entry.clone()
			}
			delete(p.parked, key)
			delete(p.connecting, key)
		}
	}

	if !consumed {
		p.idle[key] = append(p.idle[key], entry)
	}
	return true
}

// take pops the most recently returned live entry for key, discarding any
// expired or broken entries it finds along the way (spec.md §4.7). The
// readiness probe is sampled here and only here: not when put hands an
// entry straight to a parked waiter, and never while an entry merely sits
// idle.
func (p *poolInner[T]) take(ctx context.Context, key Key) (*Entry[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return nil, false
	}

	list := p.idle[key]
	for len(list) > 0 {
		n := len(list) - 1
		e := list[n]
		list = list[:n]

		state, idleAt := e.status.snapshot()
		if expired(state, idleAt, p.timeout, time.Now()) {
			p.stats.expirations++
			continue
		}
		if state != stateIdle {
			// Shared Http2 status flipped away from Idle by some other
			// handle holding the same connection; this copy is stale
			// bookkeeping, not a live connection to hand out.
			continue
		}

		switch e.value.PollReady(ctx) {
		case ReadinessBroken:
			p.stats.brokenDiscards++
			continue
		case ReadinessBusy:
			// Occupied, not dead; discard this copy and keep scanning
			// further down the LIFO stack for a usable one.
			continue
		}

		if key.Ver != VersionH1 {
			e.status.setIdle(time.Now())
			list = append(list, e.clone())
		}
		if len(list) == 0 {
			delete(p.idle, key)
		} else {
			p.idle[key] = list
		}
		p.stats.checkouts++
		if e.reused {
			p.stats.reuses++
		}
		e.reused = true
		return e, true
	}

	delete(p.idle, key)
	delete(p.connecting, key)
	return nil, false
}

// park registers a waiter at the back of key's FIFO queue.
func (p *poolInner[T]) park(key Key, w waiter[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parked[key] = append(p.parked[key], w)
}

// cleanParked drops canceled waiters for key and removes the key entirely
// once empty. Called when a Checkout gives up (context canceled or Close
// called) so a dead waiter doesn't sit in the queue forever.
func (p *poolInner[T]) cleanParked(key Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	waiters := p.parked[key]
	if len(waiters) == 0 {
		return
	}
	kept := waiters[:0:0]
	for _, w := range waiters {
		if !w.cancel.IsCanceled() {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		delete(p.parked, key)
	} else {
		p.parked[key] = kept
	}
}

// markConnecting records that a dial for key is already underway, for the
// "race a new connect" coordination hook (spec.md §4.10).
func (p *poolInner[T]) markConnecting(key Key) {
	if key.Ver == VersionH1 {
		return
	}
	p.mu.Lock()
	p.connecting[key] = struct{}{}
	p.mu.Unlock()
}

func (p *poolInner[T]) clearConnecting(key Key) {
	p.mu.Lock()
	delete(p.connecting, key)
	p.mu.Unlock()
}

func (p *poolInner[T]) isConnecting(key Key) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.connecting[key]
	return ok
}

// disable marks the pool permanently off: no further entries are accepted
// by put, take always misses, and every currently idle entry is disabled
// so any Pooled still holding a clone sees Disabled rather than a silently
// vanished pool (spec.md §6).
func (p *poolInner[T]) disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
	for _, list := range p.idle {
		for _, e := range list {
			e.status.setDisabled()
		}
	}
	p.idle = make(map[Key][]*Entry[T])
	for key, waiters := range p.parked {
		for _, w := range waiters {
			close(w.ch)
		}
		delete(p.parked, key)
	}
	p.connecting = make(map[Key]struct{})
}

// snapshot reports a point-in-time view used by pool/metrics.go.
type keyStats struct {
	Idle       int
	Parked     int
	Connecting bool
}

func (p *poolInner[T]) snapshot() (map[Key]keyStats, stats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[Key]keyStats, len(p.idle)+len(p.parked))
	for k, v := range p.idle {
		ks := out[k]
		ks.Idle = len(v)
		out[k] = ks
	}
	for k, v := range p.parked {
		ks := out[k]
		ks.Parked = len(v)
		out[k] = ks
	}
	for k := range p.connecting {
		ks := out[k]
		ks.Connecting = true
		out[k] = ks
	}
	return out, p.stats
}
