package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the IOU ledger.
type Metrics struct {
	Issued             *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	SettlementFailures *prometheus.CounterVec
	SettledPending     prometheus.Counter
	Expired            prometheus.Counter
}

// New registers ledger collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Issued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_iou_issued_total",
			Help: "IOUs issued, labeled by where the risk score came from (supplied, assessed)",
		}, []string{"risk_source"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_iou_transitions_total",
			Help: "IOU status transitions, labeled by target status",
		}, []string{"status"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_iou_rejections_total",
			Help: "IOU operations rejected, labeled by operation and error code",
		}, []string{"operation", "code"}),
		SettlementFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_iou_settlement_failures_total",
			Help: "Terminal transitions whose reputation settlement failed, labeled by outcome",
		}, []string{"outcome"}),
		SettledPending: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_iou_settlement_sweep_settled_total",
			Help: "Pending settlements applied by the settlement sweep",
		}),
		Expired: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_iou_expiry_sweep_expired_total",
			Help: "IOUs expired by the expiry sweep",
		}),
	}
}

func (m *Metrics) IncIssued(riskSource string) {
	if m == nil {
		return
	}
	m.Issued.WithLabelValues(riskSource).Inc()
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncRejection(operation, code string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) IncSettlementFailure(outcome string) {
	if m == nil {
		return
	}
	m.SettlementFailures.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Expired.Add(float64(n))
}

func (m *Metrics) AddSettledPending(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SettledPending.Add(float64(n))
}
