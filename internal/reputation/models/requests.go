package models

import (
	"strings"
	"time"

	"ria/pkg/validation"
)

// AddCredentialRequest records a credential for the caller.
type AddCredentialRequest struct {
	Type     string           `json:"type" validate:"required,notblank,max=100"`
	Issuer   string           `json:"issuer" validate:"required,notblank,max=200"`
	Status   CredentialStatus `json:"status" validate:"required,oneof=verified pending expired"`
	IssuedAt time.Time        `json:"issued_at" validate:"required"`
}

func (r *AddCredentialRequest) Normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Issuer = strings.TrimSpace(r.Issuer)
	r.Status = CredentialStatus(strings.ToLower(strings.TrimSpace(string(r.Status))))
}

func (r *AddCredentialRequest) Validate() error {
	return validation.Validate(r)
}
