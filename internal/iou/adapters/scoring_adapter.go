package adapters

import (
	"context"

	"ria/internal/iou/models"
	"ria/internal/iou/ports"
	"ria/internal/scoring"
)

type scoringGateway interface {
	Assess(ctx context.Context, purpose scoring.Purpose, draft scoring.Draft) (int, error)
	EnhanceDescription(ctx context.Context, description string) (string, error)
}

// ScoringAdapter is an in-process adapter from the ledger to the scoring
// gateway. It maps IOU drafts onto oracle drafts.
type ScoringAdapter struct {
	gateway scoringGateway
}

func NewScoringAdapter(gateway scoringGateway) ports.ScoringPort {
	return &ScoringAdapter{gateway: gateway}
}

func (a *ScoringAdapter) AssessRisk(ctx context.Context, draft models.Draft, issuerOverall float64) (int, error) {
	return a.gateway.Assess(ctx, scoring.PurposeRisk, scoring.Draft{
		Kind:           string(draft.Kind),
		Description:    draft.Description,
		Value:          draft.Value,
		DueDate:        draft.DueDate,
		SubjectOverall: issuerOverall,
	})
}

func (a *ScoringAdapter) AssessTrust(ctx context.Context, iou *models.IOU, recipientOverall float64) (int, error) {
	return a.gateway.Assess(ctx, scoring.PurposeTrust, scoring.Draft{
		Kind:           string(iou.Kind),
		Description:    iou.Description,
		Value:          iou.Value,
		DueDate:        iou.DueDate,
		SubjectOverall: recipientOverall,
	})
}

func (a *ScoringAdapter) EnhanceDescription(ctx context.Context, description string) (string, error) {
	return a.gateway.EnhanceDescription(ctx, description)
}
