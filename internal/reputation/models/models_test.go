package models

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
)

func TestComputeOverall(t *testing.T) {
	v := Vector{Tailoring: 80, Punctuality: 60, FinancialTrust: 70, CommunityContribution: 90}

	assert.InDelta(t, 75.0, ComputeOverall(v, DefaultWeights()), 1e-9)

	skewed := Weights{Tailoring: 2, Punctuality: 1, FinancialTrust: 1, CommunityContribution: 0}
	// (160 + 60 + 70) / 4
	assert.InDelta(t, 72.5, ComputeOverall(v, skewed), 1e-9)

	thirds := Weights{Tailoring: 1, Punctuality: 1, FinancialTrust: 1}
	assert.InDelta(t, 70.0, ComputeOverall(v, thirds), 1e-9)

	assert.InDelta(t, 33.33, ComputeOverall(Vector{Tailoring: 100}, thirds), 1e-9, "rounded to two decimals")
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.True(t, dErrors.HasCode(Weights{Tailoring: -1, Punctuality: 2}.Validate(), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(Weights{}.Validate(), dErrors.CodeValidation))
}

func TestDeltaBounded(t *testing.T) {
	d := Delta{Tailoring: 25, Punctuality: -40, FinancialTrust: 3}.Bounded(10)
	assert.Equal(t, Delta{Tailoring: 10, Punctuality: -10, FinancialTrust: 3}, d)
	assert.True(t, Delta{}.IsZero())
}

func TestVectorApply_Clamps(t *testing.T) {
	v := Vector{Tailoring: 98, Punctuality: 3, FinancialTrust: 50, CommunityContribution: 100}
	got := v.Apply(Delta{Tailoring: 5, Punctuality: -8, FinancialTrust: 5, CommunityContribution: 1})
	assert.Equal(t, Vector{Tailoring: 100, Punctuality: 0, FinancialTrust: 55, CommunityContribution: 100}, got)
}

// Any sequence of bounded deltas keeps every dimension in range.
func TestVectorApply_StaysInRangeForArbitrarySequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		v := NeutralVector()
		for step := 0; step < 100; step++ {
			d := Delta{
				Tailoring:             rng.Float64()*200 - 100,
				Punctuality:           rng.Float64()*200 - 100,
				FinancialTrust:        rng.Float64()*200 - 100,
				CommunityContribution: rng.Float64()*200 - 100,
			}
			if step%2 == 0 {
				d = d.Bounded(10)
			}
			v = v.Apply(d)
			require.True(t, v.InRange(), "run %d step %d: %+v", run, step, v)
			overall := ComputeOverall(v, DefaultWeights())
			require.GreaterOrEqual(t, overall, MinScore)
			require.LessOrEqual(t, overall, MaxScore)
		}
	}
}

func TestParticipantHelpers(t *testing.T) {
	now := time.Now()
	p := NewParticipant(id.NewParticipantID(), "Ada", now)
	assert.Equal(t, NeutralVector(), p.Vector)
	assert.Zero(t, p.Balance)

	credID := id.NewCredentialID()
	assert.True(t, p.RecordCredential(Credential{ID: credID, Status: CredentialPending}))
	assert.True(t, p.RecordCredential(Credential{ID: id.NewCredentialID(), Status: CredentialPending}))
	assert.False(t, p.RecordCredential(Credential{ID: credID, Status: CredentialVerified}), "same id updates in place")
	assert.Len(t, p.Credentials, 2)
	assert.Equal(t, 1, p.VerifiedCredentials())

	clone := p.Clone()
	clone.Credentials[0].Status = CredentialExpired
	assert.Equal(t, CredentialVerified, p.Credentials[0].Status, "clone must not alias credentials")
}

func TestSettlementKey(t *testing.T) {
	iouID := id.NewIOUID()
	assert.Equal(t, iouID.String()+":fulfilled", SettlementKey(iouID, "fulfilled"))
}

func TestCredentialKey(t *testing.T) {
	holder := id.NewParticipantID()
	issued := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	key := CredentialKey(holder, "Tailoring Certificate", "Guild", issued)

	assert.Equal(t, key, CredentialKey(holder, " tailoring certificate", "GUILD ", issued.In(time.FixedZone("CET", 3600))),
		"case, whitespace and zone do not change identity")
	assert.NotEqual(t, key, CredentialKey(holder, "Tailoring Certificate", "Guild", issued.Add(time.Second)))
	assert.NotEqual(t, key, CredentialKey(id.NewParticipantID(), "Tailoring Certificate", "Guild", issued))
	assert.Equal(t, "credential:"+key.String(), CredentialSettlementKey(key))
}

func TestAddCredentialRequest(t *testing.T) {
	req := AddCredentialRequest{Type: " Tailoring Certificate ", Issuer: "Guild", Status: "Verified", IssuedAt: time.Now()}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "Tailoring Certificate", req.Type)
	assert.Equal(t, CredentialVerified, req.Status)

	req.Status = "revoked"
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
}
