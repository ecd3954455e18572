// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "ria/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an IOUID where a ParticipantID is expected.
type (
	ParticipantID uuid.UUID
	IOUID         uuid.UUID
	ProposalID    uuid.UUID
	CredentialID  uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseParticipantID(s string) (ParticipantID, error) {
	id, err := parseUUID(s, "participant ID")
	return ParticipantID(id), err
}

func ParseIOUID(s string) (IOUID, error) {
	id, err := parseUUID(s, "IOU ID")
	return IOUID(id), err
}

func ParseProposalID(s string) (ProposalID, error) {
	id, err := parseUUID(s, "proposal ID")
	return ProposalID(id), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	id, err := parseUUID(s, "credential ID")
	return CredentialID(id), err
}

// New* generate random identifiers.

func NewParticipantID() ParticipantID { return ParticipantID(uuid.New()) }
func NewIOUID() IOUID                 { return IOUID(uuid.New()) }
func NewProposalID() ProposalID       { return ProposalID(uuid.New()) }
func NewCredentialID() CredentialID   { return CredentialID(uuid.New()) }

// String methods - for logging and lock keys.

func (id ParticipantID) String() string { return uuid.UUID(id).String() }
func (id IOUID) String() string         { return uuid.UUID(id).String() }
func (id ProposalID) String() string    { return uuid.UUID(id).String() }
func (id CredentialID) String() string  { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id ParticipantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id IOUID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ProposalID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// JSON encoding as canonical UUID strings.

func (id ParticipantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id IOUID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ProposalID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id CredentialID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *ParticipantID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *IOUID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ProposalID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CredentialID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; services reject them with IsNil so store
// lookups still produce "not found" consistently.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	return id, nil
}
