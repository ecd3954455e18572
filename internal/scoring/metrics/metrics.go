package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the scoring gateway.
type Metrics struct {
	OracleLatency *prometheus.HistogramVec
	Assessments   *prometheus.CounterVec
	SharedCalls   prometheus.Counter
	FastFailures  prometheus.Counter
	BreakerState  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ria_scoring_oracle_latency_seconds",
			Help:    "Latency of oracle calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),
		Assessments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_scoring_assessments_total",
			Help: "Score assessments, labeled by purpose and outcome",
		}, []string{"purpose", "outcome"}),
		SharedCalls: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_scoring_shared_calls_total",
			Help: "Assessments answered by an identical in-flight call",
		}),
		FastFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_scoring_fast_failures_total",
			Help: "Calls rejected without contacting the oracle because the breaker was open",
		}),
		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "ria_scoring_breaker_state",
			Help: "Oracle circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
	}
}

func (m *Metrics) ObserveOracle(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.OracleLatency.WithLabelValues(operation, outcome).Observe(seconds)
}

func (m *Metrics) IncAssessment(purpose, outcome string) {
	if m == nil {
		return
	}
	m.Assessments.WithLabelValues(purpose, outcome).Inc()
}

func (m *Metrics) IncShared() {
	if m == nil {
		return
	}
	m.SharedCalls.Inc()
}

func (m *Metrics) IncFastFailure() {
	if m == nil {
		return
	}
	m.FastFailures.Inc()
}

func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(state))
}
