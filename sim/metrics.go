package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	simulations *prometheus.CounterVec
	duration    prometheus.Histogram
	gates       *prometheus.CounterVec
	cache       *prometheus.CounterVec
	degenerate  prometheus.Counter
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		simulations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qtermsim_simulations_total",
			Help: "Simulations run, by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qtermsim_simulation_duration_seconds",
			Help:    "Wall time of a successful simulation.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}),
		gates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qtermsim_gates_applied_total",
			Help: "Gates applied to state vectors, by type.",
		}, []string{"type"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qtermsim_gate_cache_lookups_total",
			Help: "Gate matrix cache lookups for angled gates, by result.",
		}, []string{"result"}),
		degenerate: f.NewCounter(prometheus.CounterOpts{
			Name: "qtermsim_numeric_degeneracy_total",
			Help: "Simulations whose probabilities did not sum to 1 within tolerance.",
		}),
	}
}

func (m *Metrics) observeSimulation(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.duration.Observe(seconds)
	}
}

func (m *Metrics) observeGate(t GateType) {
	if m == nil {
		return
	}
	label := string(t)
	if !t.Known() {
		label = "other"
	}
	m.gates.WithLabelValues(label).Inc()
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cache.WithLabelValues("hit").Inc()
	} else {
		m.cache.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) observeDegeneracy() {
	if m == nil {
		return
	}
	m.degenerate.Inc()
}
