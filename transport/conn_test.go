package transport

import (
	"context"
	"net"
	"testing"

	"github.com/AlfredDev/connpool/pool"
)

func TestConnPollReadyIdleSocketIsReady(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := &Conn{Conn: client, Origin: "test"}
	if got := c.PollReady(context.Background()); got != pool.ReadinessReady {
		t.Fatalf("got %v, want Ready", got)
	}
}

func TestConnPollReadyClosedSocketIsBroken(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	c := &Conn{Conn: client, Origin: "test"}
	if got := c.PollReady(context.Background()); got != pool.ReadinessBroken {
		t.Fatalf("got %v, want Broken", got)
	}
}
