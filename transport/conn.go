// Package transport supplies the one concrete thing spec.md's pool
// deliberately keeps external: something to dial and something to poll
// for readiness. It never reaches into pool internals — it only
// implements pool.Readier and calls the handful of Pool methods any
// collaborator would.
package transport

import (
	"context"
	"net"
	"time"

	"github.com/AlfredDev/connpool/pool"
)

// Conn wraps a net.Conn so it satisfies pool.Readier. PollReady does a
// 1-byte, deadline-bounded read to detect whether the peer has
// half-closed the connection while it sat idle — the standard trick for
// telling a genuinely reusable idle socket from a dead one without
// consuming any bytes a caller still expects to read.
type Conn struct {
	net.Conn
	Origin string
}

// PollReady never blocks for more than probeDeadline and never returns
// ReadinessBusy: a plain net.Conn has no notion of partial occupancy, only
// alive or dead. Multiplexed wrappers that layer HTTP/2 stream accounting
// on top would override this to report Busy under a full stream table.
func (c *Conn) PollReady(ctx context.Context) pool.Readiness {
	deadline := time.Now().Add(probeDeadline)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.SetReadDeadline(deadline); err != nil {
		return pool.ReadinessBroken
	}
	defer c.SetReadDeadline(time.Time{})

	var buf [1]byte
	n, err := c.Read(buf[:])
	if n > 0 {
		// Data arrived where none was expected; treat as unusable rather
		// than silently consuming bytes a real caller hasn't asked for.
		return pool.ReadinessBroken
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		// No data within the probe window — exactly what a healthy idle
		// socket looks like.
		return pool.ReadinessReady
	}
	return pool.ReadinessBroken
}

const probeDeadline = 5 * time.Millisecond
