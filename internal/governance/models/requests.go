package models

import (
	"strings"
	"time"

	"ria/pkg/validation"
)

// SubmitProposalRequest is the body of POST /proposals.
type SubmitProposalRequest struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

func (r *SubmitProposalRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *SubmitProposalRequest) Validate() error {
	return validation.Validate(r)
}

func (r *SubmitProposalRequest) Draft() Draft {
	return Draft{Title: r.Title, Description: r.Description, EndDate: r.EndDate}
}

// VoteRequest is the body of POST /proposals/{id}/votes.
type VoteRequest struct {
	Direction Direction `json:"direction" validate:"required,oneof=for against"`
}

func (r *VoteRequest) Normalize() {
	r.Direction = Direction(strings.ToLower(strings.TrimSpace(string(r.Direction))))
}

func (r *VoteRequest) Validate() error {
	return validation.Validate(r)
}
