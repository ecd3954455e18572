package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusOutstanding, StatusAccepted, StatusFulfilled, StatusExpired}
	allowed := map[Status]map[Status]bool{
		StatusOutstanding: {StatusAccepted: true, StatusFulfilled: true, StatusExpired: true},
		StatusAccepted:    {StatusFulfilled: true, StatusExpired: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusFulfilled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
}

func TestTransition(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := &IOU{Status: StatusOutstanding, Version: 1}

	require.NoError(t, i.Transition(StatusAccepted, now))
	assert.Equal(t, StatusAccepted, i.Status)
	assert.Equal(t, int64(2), i.Version)
	assert.Equal(t, now, i.UpdatedAt)

	require.NoError(t, i.Transition(StatusExpired, now))
	assert.ErrorIs(t, i.Transition(StatusFulfilled, now), ErrInvalidTransition)
	assert.Equal(t, StatusExpired, i.Status, "failed transition leaves status unchanged")
	assert.Equal(t, int64(3), i.Version)
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Accepted ")
	assert.True(t, ok)
	assert.Equal(t, StatusAccepted, st)

	_, ok = ParseStatus("cancelled")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	recipient := id.NewParticipantID()
	score := 85
	settledAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := &IOU{RecipientID: &recipient, RiskScore: &score, SettledAt: &settledAt}

	c := orig.Clone()
	*c.RiskScore = 10
	other := id.NewParticipantID()
	*c.RecipientID = other
	*c.SettledAt = settledAt.Add(time.Hour)

	assert.Equal(t, 85, *orig.RiskScore)
	assert.Equal(t, recipient, *orig.RecipientID)
	assert.Equal(t, settledAt, *orig.SettledAt)
}

func TestOutcomeAndPendingSettlement(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	i := &IOU{Status: StatusAccepted}
	_, ok := i.Outcome()
	assert.False(t, ok)
	assert.False(t, i.NeedsSettlement(), "open ious have nothing to settle")

	require.NoError(t, i.Transition(StatusExpired, now))
	outcome, ok := i.Outcome()
	assert.True(t, ok)
	assert.Equal(t, OutcomeExpired, outcome)
	assert.True(t, i.NeedsSettlement())

	i.SettledAt = &now
	assert.False(t, i.NeedsSettlement())

	fulfilled := &IOU{Status: StatusFulfilled}
	outcome, _ = fulfilled.Outcome()
	assert.Equal(t, OutcomeFulfilled, outcome)
}

func TestFilterMatches(t *testing.T) {
	issuer := id.NewParticipantID()
	recipient := id.NewParticipantID()
	accepted := StatusAccepted
	i := &IOU{IssuerID: issuer, RecipientID: &recipient, Status: StatusAccepted}

	assert.True(t, Filter{}.Matches(i))
	assert.True(t, Filter{IssuerID: &issuer, Status: &accepted}.Matches(i))
	assert.False(t, Filter{IssuerID: &recipient}.Matches(i))
	assert.True(t, Filter{RecipientID: &recipient}.Matches(i))
	assert.False(t, Filter{RecipientID: &recipient}.Matches(&IOU{IssuerID: issuer}))
}

func TestIssueRequestValidation(t *testing.T) {
	score := 85
	valid := IssueRequest{
		Kind:        "Service",
		Description: "  Bike repair ",
		Value:       decimal.NewFromInt(450),
		DueDate:     time.Now().Add(24 * time.Hour),
		RiskScore:   &score,
	}
	valid.Normalize()
	require.NoError(t, valid.Validate())
	assert.Equal(t, KindService, valid.Kind)
	assert.Equal(t, "Bike repair", valid.Description)

	outOfRange := 101
	tests := []struct {
		name   string
		mutate func(r *IssueRequest)
	}{
		{"unknown kind", func(r *IssueRequest) { r.Kind = "loan" }},
		{"blank description", func(r *IssueRequest) { r.Description = "  " }},
		{"zero value", func(r *IssueRequest) { r.Value = decimal.Zero }},
		{"missing due date", func(r *IssueRequest) { r.DueDate = time.Time{} }},
		{"risk score out of range", func(r *IssueRequest) { r.RiskScore = &outOfRange }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	noScore := valid
	noScore.RiskScore = nil
	assert.NoError(t, noScore.Validate(), "risk score is optional on the wire")
}
