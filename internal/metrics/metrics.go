package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load and insight outcome labels.
const (
	ResultApplied    = "applied"
	ResultSuperseded = "superseded"
	ResultFailed     = "failed"
	ResultOK         = "ok"
	ResultCached     = "cached"
	ResultFallback   = "fallback"
)

// Metrics holds the service counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Loads        *prometheus.CounterVec
	RowsRejected prometheus.Counter
	Insights     *prometheus.CounterVec
	SeriesPoints prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocklens",
			Name:      "loads_total",
			Help:      "Series load attempts by result.",
		}, []string{"source", "result"}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocklens",
			Name:      "rows_rejected_total",
			Help:      "Parsed rows dropped by the normalizer.",
		}),
		Insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocklens",
			Name:      "insight_requests_total",
			Help:      "Insight requests by provider and result.",
		}, []string{"provider", "result"}),
		SeriesPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stocklens",
			Name:      "series_points",
			Help:      "Points in the currently loaded series.",
		}),
	}
	reg.MustRegister(m.Loads, m.RowsRejected, m.Insights, m.SeriesPoints)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
