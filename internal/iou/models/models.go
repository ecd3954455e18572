package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "ria/pkg/domain"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Status is the IOU lifecycle state.
type Status string

const (
	StatusOutstanding Status = "outstanding"
	StatusAccepted    Status = "accepted"
	StatusFulfilled   Status = "fulfilled"
	StatusExpired     Status = "expired"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists every allowed move. Terminal states have none.
var transitions = map[Status][]Status{
	StatusOutstanding: {StatusAccepted, StatusFulfilled, StatusExpired},
	StatusAccepted:    {StatusFulfilled, StatusExpired},
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

func (s Status) IsValid() bool {
	switch s {
	case StatusOutstanding, StatusAccepted, StatusFulfilled, StatusExpired:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusExpired
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Kind is what the IOU promises.
type Kind string

const (
	KindService Kind = "service"
	KindGood    Kind = "good"
)

func (k Kind) IsValid() bool {
	return k == KindService || k == KindGood
}

// IOU is a peer-to-peer obligation. An IOU is never outstanding without a
// risk score, and once bound the recipient differs from the issuer.
// SettledAt stays nil after a terminal transition until the issuer's
// reputation outcome has been applied.
type IOU struct {
	ID          id.IOUID
	Kind        Kind
	Description string
	Value       decimal.Decimal
	IssuerID    id.ParticipantID
	RecipientID *id.ParticipantID
	DueDate     time.Time
	Status      Status
	RiskScore   *int
	TrustScore  *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SettledAt   *time.Time
	Version     int64
}

// Transition moves the IOU to next, stamping UpdatedAt and bumping Version.
func (i *IOU) Transition(next Status, now time.Time) error {
	if !i.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	i.Status = next
	i.UpdatedAt = now
	i.Version++
	return nil
}

// Outcome maps a terminal status to the reputation outcome it settles.
func (i *IOU) Outcome() (Outcome, bool) {
	switch i.Status {
	case StatusFulfilled:
		return OutcomeFulfilled, true
	case StatusExpired:
		return OutcomeExpired, true
	}
	return "", false
}

// NeedsSettlement reports whether the IOU is terminal but its outcome has not
// been recorded against the issuer.
func (i *IOU) NeedsSettlement() bool {
	return i.Status.IsTerminal() && i.SettledAt == nil
}

// IsOpenPosting reports whether anyone other than the issuer may accept it.
func (i *IOU) IsOpenPosting() bool {
	return i.Status == StatusOutstanding && i.RecipientID == nil
}

// IsOverdue reports whether the due date has passed at now.
func (i *IOU) IsOverdue(now time.Time) bool {
	return i.DueDate.Before(now)
}

func (i *IOU) Clone() *IOU {
	c := *i
	if i.RecipientID != nil {
		r := *i.RecipientID
		c.RecipientID = &r
	}
	if i.RiskScore != nil {
		v := *i.RiskScore
		c.RiskScore = &v
	}
	if i.TrustScore != nil {
		v := *i.TrustScore
		c.TrustScore = &v
	}
	if i.SettledAt != nil {
		t := *i.SettledAt
		c.SettledAt = &t
	}
	return &c
}

// Draft carries the caller-supplied fields of a new IOU.
type Draft struct {
	Kind        Kind
	Description string
	Value       decimal.Decimal
	RecipientID *id.ParticipantID
	DueDate     time.Time
}

// Filter narrows List. Nil fields match everything.
type Filter struct {
	IssuerID    *id.ParticipantID
	RecipientID *id.ParticipantID
	Status      *Status
}

// Matches reports whether i satisfies f.
func (f Filter) Matches(i *IOU) bool {
	if f.IssuerID != nil && i.IssuerID != *f.IssuerID {
		return false
	}
	if f.RecipientID != nil && (i.RecipientID == nil || *i.RecipientID != *f.RecipientID) {
		return false
	}
	if f.Status != nil && i.Status != *f.Status {
		return false
	}
	return true
}

// Outcome is the reputation-affecting result of a terminal transition.
type Outcome string

const (
	OutcomeFulfilled Outcome = "fulfilled"
	OutcomeExpired   Outcome = "expired"
)
