package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector adapts a Pool's Snapshot into Prometheus metrics: per-key idle
// and parked-waiter gauges, a connecting gauge, and the cumulative
// lifetime counters. It is stateless between scrapes — every Collect call
// re-derives everything from a fresh Snapshot, so it never drifts from
// the pool's own bookkeeping.
type Collector[T Readier] struct {
	pool *Pool[T]

	idleDesc       *prometheus.Desc
	parkedDesc     *prometheus.Desc
	connectingDesc *prometheus.Desc
	checkoutsDesc  *prometheus.Desc
	reusesDesc     *prometheus.Desc
	expirationsDesc *prometheus.Desc
	brokenDesc     *prometheus.Desc
}

// NewCollector wraps pool as a prometheus.Collector ready to register.
func NewCollector[T Readier](pool *Pool[T]) *Collector[T] {
	return &Collector[T]{
		pool: pool,
		idleDesc: prometheus.NewDesc(
			"connpool_idle_connections", "Idle connections currently cached, by key.",
			[]string{"key"}, nil,
		),
		parkedDesc: prometheus.NewDesc(
			"connpool_parked_waiters", "Checkouts currently parked waiting for a key.",
			[]string{"key"}, nil,
		),
		connectingDesc: prometheus.NewDesc(
			"connpool_connecting", "Whether a dial is currently in flight for a key (1 or 0).",
			[]string{"key"}, nil,
		),
		checkoutsDesc: prometheus.NewDesc(
			"connpool_checkouts_total", "Total connections checked out from the idle list; handoffs to parked waiters are not counted.", nil, nil,
		),
		reusesDesc: prometheus.NewDesc(
			"connpool_reuses_total", "Total checkouts that handed out a previously-used connection.", nil, nil,
		),
		expirationsDesc: prometheus.NewDesc(
			"connpool_idle_expirations_total", "Total idle connections discarded for exceeding the idle timeout.", nil, nil,
		),
		brokenDesc: prometheus.NewDesc(
			"connpool_broken_discards_total", "Total connections discarded because a readiness probe reported them broken.", nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idleDesc
	ch <- c.parkedDesc
	ch <- c.connectingDesc
	ch <- c.checkoutsDesc
	ch <- c.reusesDesc
	ch <- c.expirationsDesc
	ch <- c.brokenDesc
}

// Collect implements prometheus.Collector.
func (c *Collector[T]) Collect(ch chan<- prometheus.Metric) {
	snap := c.pool.Snapshot()

	for key, ks := range snap.Keys {
		ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(ks.Idle), key)
		ch <- prometheus.MustNewConstMetric(c.parkedDesc, prometheus.GaugeValue, float64(ks.Parked), key)
		connecting := 0.0
		if ks.Connecting {
			connecting = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.connectingDesc, prometheus.GaugeValue, connecting, key)
	}

	ch <- prometheus.MustNewConstMetric(c.checkoutsDesc, prometheus.CounterValue, float64(snap.Checkouts))
	ch <- prometheus.MustNewConstMetric(c.reusesDesc, prometheus.CounterValue, float64(snap.Reuses))
	ch <- prometheus.MustNewConstMetric(c.expirationsDesc, prometheus.CounterValue, float64(snap.Expirations))
	ch <- prometheus.MustNewConstMetric(c.brokenDesc, prometheus.CounterValue, float64(snap.BrokenDiscards))
}
