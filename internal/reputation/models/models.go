package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
)

const (
	MinScore     = 0.0
	MaxScore     = 100.0
	NeutralScore = 50.0
)

// Vector holds the four independently tracked reputation dimensions.
// The overall score is never stored; it is derived with ComputeOverall.
type Vector struct {
	Tailoring             float64 `json:"tailoring"`
	Punctuality           float64 `json:"punctuality"`
	FinancialTrust        float64 `json:"financial_trust"`
	CommunityContribution float64 `json:"community_contribution"`
}

// NeutralVector is the starting vector for a newly seen participant.
func NeutralVector() Vector {
	return Vector{
		Tailoring:             NeutralScore,
		Punctuality:           NeutralScore,
		FinancialTrust:        NeutralScore,
		CommunityContribution: NeutralScore,
	}
}

// Apply adds d to v and clamps every dimension to [0,100].
func (v Vector) Apply(d Delta) Vector {
	return Vector{
		Tailoring:             clamp(v.Tailoring + d.Tailoring),
		Punctuality:           clamp(v.Punctuality + d.Punctuality),
		FinancialTrust:        clamp(v.FinancialTrust + d.FinancialTrust),
		CommunityContribution: clamp(v.CommunityContribution + d.CommunityContribution),
	}
}

// InRange reports whether every dimension lies in [0,100].
func (v Vector) InRange() bool {
	for _, x := range []float64{v.Tailoring, v.Punctuality, v.FinancialTrust, v.CommunityContribution} {
		if x < MinScore || x > MaxScore || math.IsNaN(x) {
			return false
		}
	}
	return true
}

// Delta is a per-dimension adjustment carried by a settlement event.
type Delta struct {
	Tailoring             float64 `json:"tailoring,omitempty"`
	Punctuality           float64 `json:"punctuality,omitempty"`
	FinancialTrust        float64 `json:"financial_trust,omitempty"`
	CommunityContribution float64 `json:"community_contribution,omitempty"`
}

// Bounded limits every component of d to [-limit, limit].
func (d Delta) Bounded(limit float64) Delta {
	limit = math.Abs(limit)
	b := func(x float64) float64 {
		if math.IsNaN(x) {
			return 0
		}
		return math.Max(-limit, math.Min(limit, x))
	}
	return Delta{
		Tailoring:             b(d.Tailoring),
		Punctuality:           b(d.Punctuality),
		FinancialTrust:        b(d.FinancialTrust),
		CommunityContribution: b(d.CommunityContribution),
	}
}

func (d Delta) IsZero() bool {
	return d == Delta{}
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return NeutralScore
	}
	return math.Max(MinScore, math.Min(MaxScore, x))
}

// Weights configures how dimensions combine into the overall score.
type Weights struct {
	Tailoring             float64
	Punctuality           float64
	FinancialTrust        float64
	CommunityContribution float64
}

func DefaultWeights() Weights {
	return Weights{Tailoring: 0.25, Punctuality: 0.25, FinancialTrust: 0.25, CommunityContribution: 0.25}
}

func (w Weights) sum() float64 {
	return w.Tailoring + w.Punctuality + w.FinancialTrust + w.CommunityContribution
}

// Validate rejects negative weights and an all-zero weighting.
func (w Weights) Validate() error {
	for _, x := range []float64{w.Tailoring, w.Punctuality, w.FinancialTrust, w.CommunityContribution} {
		if x < 0 || math.IsNaN(x) {
			return dErrors.Validation("reputation weights must be non-negative")
		}
	}
	if w.sum() <= 0 {
		return dErrors.Validation("reputation weights must not all be zero")
	}
	return nil
}

// ComputeOverall is the weighted mean of v under w, rounded to two decimals.
// Weights need not sum to one; they are normalized by their total.
func ComputeOverall(v Vector, w Weights) float64 {
	total := w.sum()
	if total <= 0 {
		return 0
	}
	weighted := v.Tailoring*w.Tailoring +
		v.Punctuality*w.Punctuality +
		v.FinancialTrust*w.FinancialTrust +
		v.CommunityContribution*w.CommunityContribution
	return math.Round(weighted/total*100) / 100
}

// Reputation is the externally visible vector including the derived overall.
type Reputation struct {
	Overall float64 `json:"overall"`
	Vector
}

func NewReputation(v Vector, w Weights) Reputation {
	return Reputation{Overall: ComputeOverall(v, w), Vector: v}
}

// CredentialStatus is the lifecycle state of a verifiable credential.
type CredentialStatus string

const (
	CredentialVerified CredentialStatus = "verified"
	CredentialPending  CredentialStatus = "pending"
	CredentialExpired  CredentialStatus = "expired"
)

func (s CredentialStatus) IsValid() bool {
	switch s {
	case CredentialVerified, CredentialPending, CredentialExpired:
		return true
	}
	return false
}

type Credential struct {
	ID       id.CredentialID  `json:"id"`
	Type     string           `json:"type"`
	Issuer   string           `json:"issuer"`
	Status   CredentialStatus `json:"status"`
	IssuedAt time.Time        `json:"issued_at"`
}

// Participant is a known identity with its reputation vector and balance.
// Balance is read-only here; no operation in this service transfers value.
type Participant struct {
	ID          id.ParticipantID
	DisplayName string
	Vector      Vector
	Balance     int64
	Credentials []Credential
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewParticipant creates a participant with a neutral vector and zero balance.
func NewParticipant(participantID id.ParticipantID, displayName string, now time.Time) *Participant {
	return &Participant{
		ID:          participantID,
		DisplayName: displayName,
		Vector:      NeutralVector(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordCredential adds c, or updates the status of the credential already
// recorded under c.ID. It reports whether c was new.
func (p *Participant) RecordCredential(c Credential) bool {
	for i := range p.Credentials {
		if p.Credentials[i].ID == c.ID {
			p.Credentials[i].Status = c.Status
			return false
		}
	}
	p.Credentials = append(p.Credentials, c)
	return true
}

// credentialNamespace seeds CredentialKey; changing it re-keys every credential.
var credentialNamespace = uuid.MustParse("6f1c2b8e-3d47-5a90-8e21-4b7f0c9d2a13")

// CredentialKey derives a credential id from its holder and its normalized
// type, issuer and issue time. Resubmitting the same credential yields the
// same id.
func CredentialKey(participantID id.ParticipantID, credType, issuer string, issuedAt time.Time) id.CredentialID {
	name := strings.Join([]string{
		participantID.String(),
		strings.ToLower(strings.TrimSpace(credType)),
		strings.ToLower(strings.TrimSpace(issuer)),
		issuedAt.UTC().Format(time.RFC3339Nano),
	}, "\x00")
	return id.CredentialID(uuid.NewSHA1(credentialNamespace, []byte(name)))
}

// CredentialSettlementKey builds the idempotency key for a verified credential.
func CredentialSettlementKey(credentialID id.CredentialID) string {
	return "credential:" + credentialID.String()
}

// VerifiedCredentials counts credentials in the verified state.
func (p *Participant) VerifiedCredentials() int {
	n := 0
	for _, c := range p.Credentials {
		if c.Status == CredentialVerified {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand out of a store.
func (p *Participant) Clone() *Participant {
	c := *p
	c.Credentials = append([]Credential(nil), p.Credentials...)
	return &c
}

// Reason identifies what produced a settlement event.
type Reason string

const (
	ReasonIOUFulfilled       Reason = "iou_fulfilled"
	ReasonIOUExpired         Reason = "iou_expired"
	ReasonCredentialVerified Reason = "credential_verified"
)

// Settlement is one reputation-affecting event. Key makes application
// exactly-once; replays with the same key are ignored.
type Settlement struct {
	ParticipantID id.ParticipantID
	Delta         Delta
	Reason        Reason
	Key           string
}

// SettlementKey builds the idempotency key for an IOU transition.
func SettlementKey(iouID id.IOUID, transition string) string {
	return iouID.String() + ":" + transition
}

// Profile is the participant as presented to API callers.
type Profile struct {
	ID          id.ParticipantID `json:"id"`
	DisplayName string           `json:"display_name"`
	Reputation  Reputation       `json:"reputation"`
	Balance     int64            `json:"balance"`
	Credentials []Credential     `json:"credentials"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewProfile(p *Participant, w Weights) *Profile {
	creds := p.Credentials
	if creds == nil {
		creds = []Credential{}
	}
	return &Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Reputation:  NewReputation(p.Vector, w),
		Balance:     p.Balance,
		Credentials: creds,
		CreatedAt:   p.CreatedAt,
	}
}

// Insight is an oracle-written analysis of a participant's reputation.
type Insight struct {
	ParticipantID id.ParticipantID `json:"participant_id"`
	Text          string           `json:"insight"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
