package scoring

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Purpose selects which side of an IOU is being assessed.
type Purpose string

const (
	// PurposeRisk is the issuer-side assessment taken before issuance.
	PurposeRisk Purpose = "risk"
	// PurposeTrust is the recipient-side assessment taken before acceptance.
	PurposeTrust Purpose = "trust"
)

func (p Purpose) IsValid() bool {
	return p == PurposeRisk || p == PurposeTrust
}

// Draft is the IOU as seen by the oracle. SubjectOverall is the overall
// reputation of the participant being assessed: the issuer for risk, the
// prospective recipient for trust.
type Draft struct {
	Kind           string
	Description    string
	Value          decimal.Decimal
	DueDate        time.Time
	SubjectOverall float64
}

// key identifies identical drafts for in-flight deduplication.
func (d Draft) key(p Purpose) string {
	var b strings.Builder
	b.WriteString(string(p))
	b.WriteByte('|')
	b.WriteString(d.Kind)
	b.WriteByte('|')
	b.WriteString(d.Value.String())
	b.WriteByte('|')
	b.WriteString(d.DueDate.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(decimal.NewFromFloat(d.SubjectOverall).StringFixed(2))
	b.WriteByte('|')
	b.WriteString(d.Description)
	return b.String()
}

// ReputationProfile is the input to a reputation insight.
type ReputationProfile struct {
	Overall               float64
	Tailoring             float64
	Punctuality           float64
	FinancialTrust        float64
	CommunityContribution float64
	VerifiedCredentials   int
}
