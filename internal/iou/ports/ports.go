// Package ports defines what the IOU ledger needs from the scoring gateway
// and the reputation aggregator. The ledger never imports either module
// directly; adapters bridge them in-process.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks ScoringPort,ReputationPort

import (
	"context"

	"ria/internal/iou/models"
	id "ria/pkg/domain"
)

// ScoringPort obtains scores for IOUs. Implementations return a
// scoring_unavailable domain error on any oracle failure and never invent a
// score.
type ScoringPort interface {
	// AssessRisk scores how likely the issuer is to deliver the draft.
	AssessRisk(ctx context.Context, draft models.Draft, issuerOverall float64) (int, error)
	// AssessTrust scores how likely the recipient is to honor an issued IOU.
	AssessTrust(ctx context.Context, iou *models.IOU, recipientOverall float64) (int, error)
	EnhanceDescription(ctx context.Context, description string) (string, error)
}

// ReputationPort is the ledger's view of the reputation aggregator.
type ReputationPort interface {
	// Overall returns the participant's overall score, registering unknown
	// participants with a neutral vector.
	Overall(ctx context.Context, participantID id.ParticipantID) (float64, error)
	// ApplyOutcome settles a terminal IOU transition against the issuer.
	// Replays for the same IOU and outcome have no further effect.
	ApplyOutcome(ctx context.Context, issuerID id.ParticipantID, iouID id.IOUID, outcome models.Outcome) error
}
