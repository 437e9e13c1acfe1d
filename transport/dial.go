package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/AlfredDev/connpool/middleware"
)

// Dialer opens connections for a single origin, retrying transient
// failures with exponential backoff. It is the one piece of real I/O
// SPEC_FULL wires behind the pool; the pool itself never calls it
// directly — callers (cmd/poolboard's warm-up path, or a future request
// path) do, then hand the result to Pool.Pooled or Pooled.Idle.
//
// Limiter bounds concurrent dials per origin (spec.md §9's "race a new
// connect" concern also applies to Http1, which ConnectCoordinator
// deliberately leaves uncoordinated) — a burst of checkouts against a cold
// Http1 key would otherwise be free to open unboundedly many sockets
// while the pool's checkout/park protocol is still catching up.
type Dialer struct {
	Timeout   time.Duration
	TLSConfig *tls.Config
	Log       zerolog.Logger
	Limiter   *middleware.DialLimiter
}

// NewDialer returns a Dialer with the given per-attempt timeout and a
// default per-origin dial concurrency limit.
func NewDialer(timeout time.Duration, log zerolog.Logger) *Dialer {
	return &Dialer{Timeout: timeout, Log: log, Limiter: middleware.NewDialLimiter(8)}
}

// Dial opens origin (host:port), retrying failed attempts (TCP dial or TLS
// handshake) with exponential backoff until ctx is done or the backoff's
// default maximum elapsed time (15 minutes) runs out. secure wraps the raw
// TCP connection in TLS.
func (d *Dialer) Dial(ctx context.Context, origin string, secure bool) (*Conn, error) {
	if d.Limiter != nil {
		if !d.Limiter.Acquire(origin, d.Timeout) {
			return nil, fmt.Errorf("transport: too many concurrent dials in flight for %s", origin)
		}
		defer d.Limiter.Release(origin)
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	var conn net.Conn
	op := func() error {
		dialCtx, cancel := context.WithTimeout(ctx, d.Timeout)
		defer cancel()

		nd := net.Dialer{}
		raw, err := nd.DialContext(dialCtx, "tcp", origin)
		if err != nil {
			d.Log.Debug().Err(err).Str("origin", origin).Msg("dial attempt failed, retrying")
			return err
		}
		if secure {
			tlsConn := tls.Client(raw, d.tlsConfig())
			if err := tlsConn.HandshakeContext(dialCtx); err != nil {
				raw.Close()
				return err
			}
			conn = tlsConn
		} else {
			conn = raw
		}
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, Origin: origin}, nil
}

func (d *Dialer) tlsConfig() *tls.Config {
	if d.TLSConfig != nil {
		return d.TLSConfig
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}
