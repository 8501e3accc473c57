package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storefront/internal/ratelimit/models"
	"storefront/pkg/platform/circuit"
)

// Metrics holds the limiter collectors. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration.
type Metrics struct {
	Decisions              *prometheus.CounterVec
	SweepRunsTotal         *prometheus.CounterVec
	SweepRemovedTotal      *prometheus.CounterVec
	SweepDurationSeconds   prometheus.Histogram
	StoreEntries           *prometheus.GaugeVec
	BreakerTransitions     *prometheus.CounterVec
	ViolationsDroppedTotal prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_ratelimit_decisions_total",
			Help: "Admission decisions by route class and outcome",
		}, []string{"class", "outcome"}),
		SweepRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_ratelimit_sweep_runs_total",
			Help: "Sweep runs by route class and status",
		}, []string{"class", "status"}),
		SweepRemovedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_ratelimit_sweep_removed_total",
			Help: "Expired entries removed by the sweep",
		}, []string{"class"}),
		SweepDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_edge_ratelimit_sweep_duration_seconds",
			Help:    "Duration of sweep runs",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		StoreEntries: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storefront_edge_ratelimit_store_entries",
			Help: "Live entries in the local window store after the last sweep",
		}, []string{"class"}),
		BreakerTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_ratelimit_breaker_transitions_total",
			Help: "Circuit breaker transitions of the shared window store",
		}, []string{"breaker", "state"}),
		ViolationsDroppedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_edge_ratelimit_violations_dropped_total",
			Help: "Violation events dropped because the publish buffer was full",
		}),
	}
}

// ObserveDecision counts one admission outcome.
func (m *Metrics) ObserveDecision(class models.RouteClass, result *models.Result, err error) {
	if m == nil {
		return
	}
	outcome := "allowed"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Allowed:
		outcome = "denied"
	case result.Degraded:
		outcome = "allowed_degraded"
	}
	m.Decisions.WithLabelValues(class.String(), outcome).Inc()
}

func (m *Metrics) ObserveSweep(class models.RouteClass, removed, remaining int, seconds float64, err error) {
	if m == nil {
		return
	}
	m.SweepDurationSeconds.Observe(seconds)
	if err != nil {
		m.SweepRunsTotal.WithLabelValues(class.String(), "error").Inc()
		return
	}
	m.SweepRunsTotal.WithLabelValues(class.String(), "success").Inc()
	m.SweepRemovedTotal.WithLabelValues(class.String()).Add(float64(removed))
	if remaining >= 0 {
		m.StoreEntries.WithLabelValues(class.String()).Set(float64(remaining))
	}
}

// ObserveBreaker matches resilient.WithStateObserver.
func (m *Metrics) ObserveBreaker(name string, state circuit.State) {
	if m == nil {
		return
	}
	m.BreakerTransitions.WithLabelValues(name, state.String()).Inc()
}

func (m *Metrics) IncrementViolationsDropped() {
	if m == nil {
		return
	}
	m.ViolationsDroppedTotal.Inc()
}
