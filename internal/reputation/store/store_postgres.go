package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ria/internal/reputation/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists participants and their credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const participantColumns = `id, display_name, tailoring, punctuality, financial_trust, community_contribution, balance, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Participant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (`+participantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(p.ID),
		p.DisplayName,
		p.Vector.Tailoring,
		p.Vector.Punctuality,
		p.Vector.FinancialTrust,
		p.Vector.CommunityContribution,
		p.Balance,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	return findParticipant(ctx, s.db, participantID, false)
}

// Execute locks the participant row, validates, mutates and writes back in one
// transaction.
func (s *PostgresStore) Execute(ctx context.Context, participantID id.ParticipantID, validate func(*models.Participant) error, mutate func(*models.Participant)) (*models.Participant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin participant execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p, err := findParticipant(ctx, tx, participantID, true)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(p); err != nil {
			return nil, err
		}
	}
	mutate(p)

	if err := updateParticipant(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit participant execute: %w", err)
	}
	return p, nil
}

func findParticipant(ctx context.Context, exec dbExecutor, participantID id.ParticipantID, forUpdate bool) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		p     models.Participant
		rawID uuid.UUID
	)
	err := exec.QueryRowContext(ctx, query, uuid.UUID(participantID)).Scan(
		&rawID,
		&p.DisplayName,
		&p.Vector.Tailoring,
		&p.Vector.Punctuality,
		&p.Vector.FinancialTrust,
		&p.Vector.CommunityContribution,
		&p.Balance,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	p.ID = id.ParticipantID(rawID)

	creds, err := listCredentials(ctx, exec, participantID)
	if err != nil {
		return nil, err
	}
	p.Credentials = creds
	return &p, nil
}

func listCredentials(ctx context.Context, exec dbExecutor, participantID id.ParticipantID) ([]models.Credential, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, type, issuer, status, issued_at
		FROM credentials
		WHERE participant_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(participantID))
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []models.Credential
	for rows.Next() {
		var (
			c      models.Credential
			rawID  uuid.UUID
			status string
		)
		if err := rows.Scan(&rawID, &c.Type, &c.Issuer, &status, &c.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		c.ID = id.CredentialID(rawID)
		c.Status = models.CredentialStatus(status)
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

func updateParticipant(ctx context.Context, exec dbExecutor, p *models.Participant) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE participants
		SET display_name = $2, tailoring = $3, punctuality = $4, financial_trust = $5,
		    community_contribution = $6, balance = $7, updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(p.ID),
		p.DisplayName,
		p.Vector.Tailoring,
		p.Vector.Punctuality,
		p.Vector.FinancialTrust,
		p.Vector.CommunityContribution,
		p.Balance,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}

	for _, c := range p.Credentials {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO credentials (id, participant_id, type, issuer, status, issued_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
		`, uuid.UUID(c.ID), uuid.UUID(p.ID), c.Type, c.Issuer, string(c.Status), c.IssuedAt)
		if err != nil {
			return fmt.Errorf("upsert credential: %w", err)
		}
	}
	return nil
}
