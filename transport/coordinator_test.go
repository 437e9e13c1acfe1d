package transport

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlfredDev/connpool/pool"
	"github.com/rs/zerolog"
)

func TestConnectCoordinatorCollapsesConcurrentHttp2Dials(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	var dials int32
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&dials, 1)
			_ = c
		}
	}()

	p := pool.New[*Conn](nil)
	dialer := NewDialer(time.Second, zerolog.Nop())
	coord := NewConnectCoordinator()
	key := pool.Key{Origin: ln.Addr().String(), Ver: pool.VersionH2}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coord.Connect(context.Background(), p, key, dialer, ln.Addr().String(), false)
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("connect error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("dials = %d, want exactly 1 (concurrent Http2 connects should collapse)", got)
	}
	if p.IsConnecting(key) {
		t.Fatalf("expected connecting hint to be cleared once all callers returned")
	}
}
