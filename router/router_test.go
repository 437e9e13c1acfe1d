package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/AlfredDev/connpool/config"
	"github.com/AlfredDev/connpool/pool"
)

type fakeSnapshotSource struct {
	stats pool.Stats
}

func (f fakeSnapshotSource) Snapshot() pool.Stats {
	return f.stats
}

func testSetup(source SnapshotSource) http.Handler {
	cfg := &config.Config{Addr: ":0", Env: "test"}
	log := zerolog.New(io.Discard).With().Timestamp().Logger()
	return New(cfg, log, source, nil)
}

func TestHealthz(t *testing.T) {
	r := testSetup(fakeSnapshotSource{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for /healthz, got %d", rw.Result().StatusCode)
	}
}

func TestDebugPoolReturnsSnapshot(t *testing.T) {
	source := fakeSnapshotSource{stats: pool.Stats{
		Checkouts: 3,
		Keys: map[string]pool.KeyStats{
			"example.com/h1": {Idle: 2},
		},
	}}
	r := testSetup(source)

	req := httptest.NewRequest(http.MethodGet, "/debug/pool", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for /debug/pool, got %d", rw.Result().StatusCode)
	}

	var got pool.Stats
	if err := json.NewDecoder(rw.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Checkouts != 3 {
		t.Fatalf("checkouts = %d, want 3", got.Checkouts)
	}
	if got.Keys["example.com/h1"].Idle != 2 {
		t.Fatalf("idle count = %d, want 2", got.Keys["example.com/h1"].Idle)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	r := testSetup(fakeSnapshotSource{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", rw.Result().StatusCode)
	}
}
