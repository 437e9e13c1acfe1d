package redisclient

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/AlfredDev/connpool/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr()}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestPublishStats(t *testing.T) {
	c, mr := newTestClient(t)

	snapshot := map[string]int{"idle": 3}
	if err := c.PublishStats(context.Background(), "pool:stats", snapshot, time.Minute); err != nil {
		t.Fatalf("PublishStats: %v", err)
	}

	raw, err := mr.Get("pool:stats")
	if err != nil {
		t.Fatalf("miniredis Get: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["idle"] != 3 {
		t.Fatalf("idle = %d, want 3", got["idle"])
	}
}

func TestPublishLoopStopsOnContextCancel(t *testing.T) {
	c, mr := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	log := zerolog.New(io.Discard)
	calls := 0
	done := make(chan struct{})
	go func() {
		c.PublishLoop(ctx, log, "pool:stats", 10*time.Millisecond, func() any {
			calls++
			return map[string]int{"idle": calls}
		})
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishLoop did not stop after context cancellation")
	}

	if _, err := mr.Get("pool:stats"); err != nil {
		t.Fatalf("expected at least one publish before cancel, got error: %v", err)
	}
}
