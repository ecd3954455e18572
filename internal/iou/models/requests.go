package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "ria/pkg/domain"
	"ria/pkg/validation"
)

// IssueRequest is the body of POST /ious. When RiskScore is omitted the
// score is obtained from the scoring gateway.
type IssueRequest struct {
	Kind        Kind              `json:"kind" validate:"required,oneof=service good"`
	Description string            `json:"description" validate:"required,notblank,max=2000"`
	Value       decimal.Decimal   `json:"value" validate:"gt=0"`
	RecipientID *id.ParticipantID `json:"recipient_id,omitempty"`
	DueDate     time.Time         `json:"due_date" validate:"required"`
	RiskScore   *int              `json:"risk_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (r *IssueRequest) Normalize() {
	r.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	r.Description = strings.TrimSpace(r.Description)
}

func (r *IssueRequest) Validate() error {
	return validation.Validate(r)
}

func (r *IssueRequest) Draft() Draft {
	return Draft{
		Kind:        r.Kind,
		Description: r.Description,
		Value:       r.Value,
		RecipientID: r.RecipientID,
		DueDate:     r.DueDate,
	}
}

// AssessRequest is the body of POST /ious/assess.
type AssessRequest struct {
	Kind        Kind            `json:"kind" validate:"required,oneof=service good"`
	Description string          `json:"description" validate:"required,notblank,max=2000"`
	Value       decimal.Decimal `json:"value" validate:"gt=0"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
}

func (r *AssessRequest) Normalize() {
	r.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	r.Description = strings.TrimSpace(r.Description)
}

func (r *AssessRequest) Validate() error {
	return validation.Validate(r)
}

func (r *AssessRequest) Draft() Draft {
	return Draft{
		Kind:        r.Kind,
		Description: r.Description,
		Value:       r.Value,
		DueDate:     r.DueDate,
	}
}

// EnhanceRequest is the body of POST /ious/enhance.
type EnhanceRequest struct {
	Description string `json:"description" validate:"required,notblank,max=2000"`
}

func (r *EnhanceRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
}

func (r *EnhanceRequest) Validate() error {
	return validation.Validate(r)
}
