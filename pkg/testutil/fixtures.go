package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	govModels "ria/internal/governance/models"
	iouModels "ria/internal/iou/models"
	id "ria/pkg/domain"
)

// TestIDs provides fixed participant IDs for deterministic test data.
var TestIDs = struct {
	Alice id.ParticipantID
	Bob   id.ParticipantID
	Carol id.ParticipantID
}{
	Alice: id.ParticipantID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Bob:   id.ParticipantID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	Carol: id.ParticipantID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
}

// IOUBuilder builds outstanding IOUs, due a week after creation.
type IOUBuilder struct {
	iou *iouModels.IOU
}

func NewIOUBuilder(createdAt time.Time) *IOUBuilder {
	risk := 80
	return &IOUBuilder{
		iou: &iouModels.IOU{
			ID:          id.NewIOUID(),
			Kind:        iouModels.KindService,
			Description: "Bike repair",
			Value:       decimal.NewFromInt(100),
			IssuerID:    TestIDs.Alice,
			DueDate:     createdAt.Add(7 * 24 * time.Hour),
			Status:      iouModels.StatusOutstanding,
			RiskScore:   &risk,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
			Version:     1,
		},
	}
}

func (b *IOUBuilder) WithIssuer(issuerID id.ParticipantID) *IOUBuilder {
	b.iou.IssuerID = issuerID
	return b
}

func (b *IOUBuilder) WithRecipient(recipientID id.ParticipantID) *IOUBuilder {
	b.iou.RecipientID = &recipientID
	return b
}

func (b *IOUBuilder) WithDescription(description string) *IOUBuilder {
	b.iou.Description = description
	return b
}

func (b *IOUBuilder) WithValue(value int64) *IOUBuilder {
	b.iou.Value = decimal.NewFromInt(value)
	return b
}

func (b *IOUBuilder) DueAt(due time.Time) *IOUBuilder {
	b.iou.DueDate = due
	return b
}

func (b *IOUBuilder) WithStatus(status iouModels.Status) *IOUBuilder {
	b.iou.Status = status
	return b
}

func (b *IOUBuilder) Build() *iouModels.IOU {
	return b.iou.Clone()
}

// ProposalBuilder builds active proposals open for three days.
type ProposalBuilder struct {
	proposal *govModels.Proposal
}

func NewProposalBuilder(createdAt time.Time) *ProposalBuilder {
	return &ProposalBuilder{
		proposal: &govModels.Proposal{
			ID:         id.NewProposalID(),
			Title:      "Community garden",
			Status:     govModels.StatusActive,
			EndDate:    createdAt.Add(72 * time.Hour),
			ProposerID: id.NewParticipantID(),
			CreatedAt:  createdAt,
		},
	}
}

func (b *ProposalBuilder) WithTitle(title string) *ProposalBuilder {
	b.proposal.Title = title
	return b
}

func (b *ProposalBuilder) WithProposer(proposerID id.ParticipantID) *ProposalBuilder {
	b.proposal.ProposerID = proposerID
	return b
}

func (b *ProposalBuilder) EndsAt(end time.Time) *ProposalBuilder {
	b.proposal.EndDate = end
	return b
}

func (b *ProposalBuilder) Build() *govModels.Proposal {
	return b.proposal.Clone()
}
