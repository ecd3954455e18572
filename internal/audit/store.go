package audit

import (
	"context"

	id "ria/pkg/domain"
)

// Store is an append-only event log.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListByParticipant returns the newest events first, at most limit.
	ListByParticipant(ctx context.Context, participantID id.ParticipantID, limit int) ([]Event, error)
}

// Sink receives every event after it is stored.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
