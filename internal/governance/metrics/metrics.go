package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for governance.
type Metrics struct {
	ProposalsSubmitted prometheus.Counter
	Votes              *prometheus.CounterVec
	ProposalsClosed    *prometheus.CounterVec
}

// New registers governance collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProposalsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "ria_governance_proposals_submitted_total",
			Help: "Proposals submitted",
		}),
		Votes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_governance_votes_total",
			Help: "Votes received, labeled by direction and effect on the tally (new, changed, unchanged)",
		}, []string{"direction", "change"}),
		ProposalsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ria_governance_proposals_closed_total",
			Help: "Proposals closed, labeled by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncProposalSubmitted() {
	if m == nil {
		return
	}
	m.ProposalsSubmitted.Inc()
}

func (m *Metrics) IncVote(direction, change string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(direction, change).Inc()
}

func (m *Metrics) IncClosed(outcome string) {
	if m == nil {
		return
	}
	m.ProposalsClosed.WithLabelValues(outcome).Inc()
}
