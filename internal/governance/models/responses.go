package models

import (
	"time"

	id "ria/pkg/domain"
)

// Response is the JSON view of a proposal.
type Response struct {
	ID           id.ProposalID    `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Status       Status           `json:"status"`
	VotesFor     int64            `json:"votes_for"`
	VotesAgainst int64            `json:"votes_against"`
	EndDate      time.Time        `json:"end_date"`
	ProposerID   id.ParticipantID `json:"proposer_id"`
	CreatedAt    time.Time        `json:"created_at"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
}

func ToResponse(p *Proposal) Response {
	return Response{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Status:       p.Status,
		VotesFor:     p.VotesFor,
		VotesAgainst: p.VotesAgainst,
		EndDate:      p.EndDate,
		ProposerID:   p.ProposerID,
		CreatedAt:    p.CreatedAt,
		ClosedAt:     p.ClosedAt,
	}
}

type ListResponse struct {
	Proposals []Response `json:"proposals"`
}

func ToListResponse(proposals []*Proposal) ListResponse {
	out := make([]Response, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, ToResponse(p))
	}
	return ListResponse{Proposals: out}
}
