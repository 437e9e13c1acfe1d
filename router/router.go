// Package router exposes the pool's live state over HTTP: a health check,
// a JSON snapshot for debugging, and a Prometheus scrape endpoint. It owns
// no pool logic of its own — everything here reads from pool.Pool.Snapshot
// or the prometheus.Collector passed in (pool.Collector in cmd/poolboard).
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AlfredDev/connpool/config"
	"github.com/AlfredDev/connpool/pool"
)

// SnapshotSource is anything that can report the pool's current state —
// satisfied by *pool.Pool[*transport.Conn], narrowed to an interface so
// the router package doesn't need to know the pool's value type.
type SnapshotSource interface {
	Snapshot() pool.Stats
}

// New returns a chi Router exposing /healthz, /debug/pool, and /metrics.
func New(cfg *config.Config, log zerolog.Logger, p SnapshotSource, collector prometheus.Collector) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))

	reg := prometheus.NewRegistry()
	if collector != nil {
		reg.MustRegister(collector)
	}

	r.Get("/healthz", healthzHandler(cfg))
	r.Get("/debug/pool", poolSnapshotHandler(p))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func healthzHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"env":    cfg.Env,
		})
	}
}

func poolSnapshotHandler(p SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := p.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("handled request")
		})
	}
}
