package transport

import (
	"context"

	"github.com/AlfredDev/connpool/pool"
	"golang.org/x/sync/singleflight"
)

// ConnectCoordinator collapses concurrent dials racing the same
// multiplexed key into a single physical connect, and keeps the pool's
// own connecting hint (spec.md §4.10) in step with the collapse so a
// caller checking Pool.IsConnecting sees the same picture as the dial
// side. Exclusive (Http1) keys are cheap to over-dial — the checkout/park
// protocol already bounds the damage — so no coordination is applied
// there; every caller just dials independently.
type ConnectCoordinator struct {
	group singleflight.Group
}

// NewConnectCoordinator returns a coordinator ready to use across
// goroutines.
func NewConnectCoordinator() *ConnectCoordinator {
	return &ConnectCoordinator{}
}

// Connect dials origin for key, deduplicating concurrent callers racing
// the same Http2 key into one Dialer.Dial call. Every caller, including
// the one that actually dialed, receives the resulting Conn (or error).
func (c *ConnectCoordinator) Connect(ctx context.Context, p *pool.Pool[*Conn], key pool.Key, dialer *Dialer, origin string, secure bool) (*Conn, error) {
	if key.Ver != pool.VersionH2 {
		return dialer.Dial(ctx, origin, secure)
	}

	p.Connecting(key)
	defer p.ConnectingDone(key)

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		return dialer.Dial(ctx, origin, secure)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Conn), nil
}
