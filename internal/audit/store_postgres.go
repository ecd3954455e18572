package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "ria/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("encode audit attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, action, participant_id, subject, attributes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.Timestamp, string(event.Action), uuid.UUID(event.ParticipantID), event.Subject, attrs)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByParticipant(ctx context.Context, participantID id.ParticipantID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, action, participant_id, subject, attributes
		FROM audit_events
		WHERE participant_id = $1
		ORDER BY occurred_at DESC, id
		LIMIT $2
	`, uuid.UUID(participantID), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			pid    uuid.UUID
			action string
			attrs  []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &pid, &e.Subject, &attrs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.ParticipantID = id.ParticipantID(pid)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
				return nil, fmt.Errorf("decode audit attributes: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
