package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/iou/models"
	repModels "ria/internal/reputation/models"
	repService "ria/internal/reputation/service"
	repStore "ria/internal/reputation/store"
	"ria/internal/scoring"
	"ria/internal/scoring/oracle"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
)

func TestScoringAdapterUsesPurposePrompts(t *testing.T) {
	fake := oracle.NewFake("0").
		On("issuer will deliver", "Score: 81").
		On("recipient will honor", "64")
	adapter := NewScoringAdapter(scoring.New(fake))
	ctx := context.Background()
	due := time.Now().Add(48 * time.Hour)

	risk, err := adapter.AssessRisk(ctx, models.Draft{
		Kind:        models.KindService,
		Description: "Bike repair",
		Value:       decimal.NewFromInt(450),
		DueDate:     due,
	}, 50)
	require.NoError(t, err)
	assert.Equal(t, 81, risk)

	trust, err := adapter.AssessTrust(ctx, &models.IOU{
		Kind:        models.KindGood,
		Description: "Homemade bread",
		Value:       decimal.NewFromInt(12),
		DueDate:     due,
	}, 50)
	require.NoError(t, err)
	assert.Equal(t, 64, trust)

	fake.Err = assert.AnError
	_, err = adapter.AssessRisk(ctx, models.Draft{Kind: models.KindService, Description: "x", Value: decimal.NewFromInt(1), DueDate: due}, 50)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
}

func TestReputationAdapter(t *testing.T) {
	svc, err := repService.New(repStore.New(), repStore.NewInMemoryLedger(), repService.DefaultConfig())
	require.NoError(t, err)
	adapter := NewReputationAdapter(svc)
	ctx := context.Background()
	issuer := id.NewParticipantID()

	overall, err := adapter.Overall(ctx, issuer)
	require.NoError(t, err)
	assert.Equal(t, repModels.NeutralScore, overall, "unknown participants start neutral")

	iouID := id.NewIOUID()
	require.NoError(t, adapter.ApplyOutcome(ctx, issuer, iouID, models.OutcomeFulfilled))
	require.NoError(t, adapter.ApplyOutcome(ctx, issuer, iouID, models.OutcomeFulfilled))

	rep, err := svc.GetReputation(ctx, issuer)
	require.NoError(t, err)
	assert.Equal(t, 55.0, rep.Punctuality, "replayed outcome applies once")
	assert.Equal(t, 55.0, rep.FinancialTrust)

	require.Error(t, adapter.ApplyOutcome(ctx, issuer, iouID, models.Outcome("cancelled")))
}
