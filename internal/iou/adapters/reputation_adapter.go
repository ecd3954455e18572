package adapters

import (
	"context"
	"fmt"

	"ria/internal/iou/models"
	"ria/internal/iou/ports"
	repModels "ria/internal/reputation/models"
	id "ria/pkg/domain"
)

type reputationService interface {
	EnsureParticipant(ctx context.Context, participantID id.ParticipantID, displayName string) (*repModels.Participant, error)
	GetReputation(ctx context.Context, participantID id.ParticipantID) (repModels.Reputation, error)
	ApplyIOUOutcome(ctx context.Context, participantID id.ParticipantID, iouID id.IOUID, reason repModels.Reason) (bool, error)
}

// ReputationAdapter is an in-process adapter from the ledger to the
// reputation aggregator.
type ReputationAdapter struct {
	service reputationService
}

func NewReputationAdapter(service reputationService) ports.ReputationPort {
	return &ReputationAdapter{service: service}
}

func (a *ReputationAdapter) Overall(ctx context.Context, participantID id.ParticipantID) (float64, error) {
	if _, err := a.service.EnsureParticipant(ctx, participantID, ""); err != nil {
		return 0, err
	}
	rep, err := a.service.GetReputation(ctx, participantID)
	if err != nil {
		return 0, err
	}
	return rep.Overall, nil
}

func (a *ReputationAdapter) ApplyOutcome(ctx context.Context, issuerID id.ParticipantID, iouID id.IOUID, outcome models.Outcome) error {
	var reason repModels.Reason
	switch outcome {
	case models.OutcomeFulfilled:
		reason = repModels.ReasonIOUFulfilled
	case models.OutcomeExpired:
		reason = repModels.ReasonIOUExpired
	default:
		return fmt.Errorf("unsupported iou outcome %q", outcome)
	}
	_, err := a.service.ApplyIOUOutcome(ctx, issuerID, iouID, reason)
	return err
}
