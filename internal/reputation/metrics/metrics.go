package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for reputation aggregation.
type Metrics struct {
	SettlementsApplied   *prometheus.CounterVec
	SettlementsDuplicate *prometheus.CounterVec
	ParticipantsCreated  prometheus.Counter
	CredentialsAdded     *prometheus.CounterVec
	InsightFailures      prometheus.Counter
}

// New registers reputation collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SettlementsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_reputation_settlements_applied_total",
			Help: "Settlement events applied to a reputation vector, labeled by reason",
		}, []string{"reason"}),
		SettlementsDuplicate: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_reputation_settlements_duplicate_total",
			Help: "Settlement events ignored because their idempotency key was already applied",
		}, []string{"reason"}),
		ParticipantsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_reputation_participants_created_total",
			Help: "Participants created on first contact",
		}),
		CredentialsAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_reputation_credentials_added_total",
			Help: "Credentials recorded, labeled by status",
		}, []string{"status"}),
		InsightFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_reputation_insight_failures_total",
			Help: "Reputation insight requests that failed at the oracle",
		}),
	}
}

func (m *Metrics) IncSettlementApplied(reason string) {
	if m == nil {
		return
	}
	m.SettlementsApplied.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncSettlementDuplicate(reason string) {
	if m == nil {
		return
	}
	m.SettlementsDuplicate.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncParticipantCreated() {
	if m == nil {
		return
	}
	m.ParticipantsCreated.Inc()
}

func (m *Metrics) IncCredentialAdded(status string) {
	if m == nil {
		return
	}
	m.CredentialsAdded.WithLabelValues(status).Inc()
}

func (m *Metrics) IncInsightFailure() {
	if m == nil {
		return
	}
	m.InsightFailures.Inc()
}
