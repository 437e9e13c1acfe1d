package pool

import "context"

// Readiness is the outcome of a non-blocking readiness probe on a pooled value.
type Readiness int

const (
	// ReadinessReady means the value is usable right now.
	ReadinessReady Readiness = iota
	// ReadinessBusy means the value is healthy but currently occupied.
	// Only meaningful for multiplexed (Http2) connections; for Http1
	// values the pool never calls PollReady while the value is checked out.
	ReadinessBusy
	// ReadinessBroken means the value must be dropped, not handed out.
	ReadinessBroken
)

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessBusy:
		return "busy"
	case ReadinessBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Readier is the capability every value stored in the pool must provide:
// a non-blocking check of whether it is still usable. The pool samples
// this only when a checkout pops an idle Entry — never while the value
// sits untouched in the idle list. An Entry that put hands straight to a
// parked waiter is not probed.
//
// PollReady must return promptly. The context exists to let a caller
// bound a misbehaving implementation; it is not license for the probe to
// perform blocking I/O of its own.
type Readier interface {
	PollReady(ctx context.Context) Readiness
}
