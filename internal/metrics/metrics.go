// Package metrics exposes Prometheus counters for the monitoring loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleDuration  prometheus.Histogram
	SignalsTotal   *prometheus.CounterVec // labels: direction
	ClosedTotal    *prometheus.CounterVec // labels: status
	SymbolsSkipped prometheus.Counter
	OpenPositions  prometheus.Gauge
}

// New registers and returns all engine metrics.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Total monitoring cycles completed",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Wall-clock duration of one monitoring cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Entry signals detected, by direction",
		}, []string{"direction"}),
		ClosedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_positions_closed_total",
			Help: "Positions closed, by final status",
		}, []string{"status"}),
		SymbolsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_symbols_skipped_total",
			Help: "Symbols skipped in a cycle (insufficient data, stale pivots, fetch errors)",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bot_open_positions",
			Help: "Currently open positions",
		}),
	}
	prometheus.MustRegister(
		m.CyclesTotal, m.CycleDuration, m.SignalsTotal,
		m.ClosedTotal, m.SymbolsSkipped, m.OpenPositions,
	)
	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
