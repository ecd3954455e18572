package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "ria/pkg/domain"
)

// Response is the JSON view of an IOU.
type Response struct {
	ID          id.IOUID          `json:"id"`
	Kind        Kind              `json:"kind"`
	Description string            `json:"description"`
	Value       decimal.Decimal   `json:"value"`
	IssuerID    id.ParticipantID  `json:"issuer_id"`
	RecipientID *id.ParticipantID `json:"recipient_id,omitempty"`
	DueDate     time.Time         `json:"due_date"`
	Status      Status            `json:"status"`
	RiskScore   *int              `json:"risk_score,omitempty"`
	TrustScore  *int              `json:"trust_score,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func ToResponse(i *IOU) Response {
	return Response{
		ID:          i.ID,
		Kind:        i.Kind,
		Description: i.Description,
		Value:       i.Value,
		IssuerID:    i.IssuerID,
		RecipientID: i.RecipientID,
		DueDate:     i.DueDate,
		Status:      i.Status,
		RiskScore:   i.RiskScore,
		TrustScore:  i.TrustScore,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func ToResponses(ious []*IOU) []Response {
	out := make([]Response, 0, len(ious))
	for _, i := range ious {
		out = append(out, ToResponse(i))
	}
	return out
}

type ListResponse struct {
	IOUs []Response `json:"ious"`
}

type AssessResponse struct {
	RiskScore int `json:"risk_score"`
}

type EnhanceResponse struct {
	Description string `json:"description"`
}
