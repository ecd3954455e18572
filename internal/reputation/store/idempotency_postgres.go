package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ria/internal/reputation/models"
	id "ria/pkg/domain"
)

// PostgresLedger claims settlement keys through the settlement_keys primary key.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Claim(ctx context.Context, key string, participantID id.ParticipantID) (bool, error) {
	return claimKey(ctx, l.db, key, participantID)
}

// Settle claims key and applies mutate to the locked participant row in one
// transaction. A concurrent claimant of the same key blocks on the insert until
// this transaction ends, then sees the conflict.
func (l *PostgresLedger) Settle(ctx context.Context, key string, participantID id.ParticipantID, mutate func(*models.Participant)) (bool, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claimed, err := claimKey(ctx, tx, key, participantID)
	if err != nil || !claimed {
		return false, err
	}
	p, err := findParticipant(ctx, tx, participantID, true)
	if err != nil {
		return false, err
	}
	mutate(p)
	if err := updateParticipant(ctx, tx, p); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit settlement: %w", err)
	}
	return true, nil
}

func claimKey(ctx context.Context, exec dbExecutor, key string, participantID id.ParticipantID) (bool, error) {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO settlement_keys (key, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, uuid.UUID(participantID))
	if err != nil {
		return false, fmt.Errorf("claim settlement key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim settlement key rows: %w", err)
	}
	return n == 1, nil
}

func (l *PostgresLedger) Release(ctx context.Context, key string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM settlement_keys WHERE key = $1`, key); err != nil {
		return fmt.Errorf("release settlement key: %w", err)
	}
	return nil
}
