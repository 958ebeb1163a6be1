package console

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/oncall/internal/incident"
)

// Metrics holds Prometheus metrics for the console subsystem. A nil
// *Metrics is valid and records nothing, which lets the TUI run
// without a registry.
type Metrics struct {
	FetchesTotal      *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	UpdatesTotal      *prometheus.CounterVec
	UpdateDuration    *prometheus.HistogramVec
	TransitionsDenied *prometheus.CounterVec
	IncidentsVisible  prometheus.Gauge
}

// NewMetrics registers and returns console metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oncall_fetches_total",
			Help: "Total incident list fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oncall_fetch_duration_seconds",
			Help:    "Duration of incident list fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}),
		UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oncall_updates_total",
			Help: "Total incident status updates by target status and outcome.",
		}, []string{"target", "outcome"}),
		UpdateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oncall_update_duration_seconds",
			Help:    "Duration of incident status updates in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"target"}),
		TransitionsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oncall_transitions_denied_total",
			Help: "Status transitions rejected by the local guard before any request.",
		}, []string{"from", "to"}),
		IncidentsVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oncall_incidents_visible",
			Help: "Incidents currently held in the view.",
		}),
	}

	reg.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.UpdatesTotal,
		m.UpdateDuration,
		m.TransitionsDenied,
		m.IncidentsVisible,
	)

	return m
}

func (m *Metrics) observeFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) observeUpdate(target, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(target, outcome).Inc()
	m.UpdateDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (m *Metrics) incTransitionDenied(from, to incident.Status) {
	if m == nil {
		return
	}
	m.TransitionsDenied.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) setVisible(n int) {
	if m == nil {
		return
	}
	m.IncidentsVisible.Set(float64(n))
}
