package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ria/internal/governance/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

const proposalColumns = `id, title, description, status, votes_for, votes_against, end_date, proposer_id, created_at, closed_at`

// PostgresStore persists proposals and votes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Proposal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposals (`+proposalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(p.ID),
		p.Title,
		p.Description,
		string(p.Status),
		p.VotesFor,
		p.VotesAgainst,
		p.EndDate,
		uuid.UUID(p.ProposerID),
		p.CreatedAt,
		p.ClosedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, uuid.UUID(proposalID))
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, status *models.Status) ([]*models.Proposal, error) {
	if status != nil {
		return s.query(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE status = $1 ORDER BY created_at DESC, id`, string(*status))
	}
	return s.query(ctx, `SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC, id`)
}

func (s *PostgresStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Proposal, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx, `
		SELECT `+proposalColumns+` FROM proposals
		WHERE status = 'active' AND end_date <= $1
		ORDER BY end_date
		LIMIT $2
	`, now, limit)
}

func (s *PostgresStore) FindVote(ctx context.Context, proposalID id.ProposalID, voterID id.ParticipantID) (*models.Vote, error) {
	return findVote(ctx, s.db, proposalID, voterID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findVote(ctx context.Context, q queryRower, proposalID id.ProposalID, voterID id.ParticipantID) (*models.Vote, error) {
	var (
		direction string
		castAt    time.Time
	)
	err := q.QueryRowContext(ctx, `
		SELECT direction, cast_at FROM votes WHERE proposal_id = $1 AND voter_id = $2
	`, uuid.UUID(proposalID), uuid.UUID(voterID)).Scan(&direction, &castAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vote: %w", err)
	}
	return &models.Vote{
		ProposalID: proposalID,
		VoterID:    voterID,
		Direction:  models.Direction(direction),
		CastAt:     castAt,
	}, nil
}

// Execute locks the proposal row, validates, mutates and writes back in one
// transaction.
func (s *PostgresStore) Execute(ctx context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin proposal execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p, err := lockProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(p); err != nil {
			return nil, err
		}
	}
	mutate(p)

	if err := updateProposal(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit proposal execute tx: %w", err)
	}
	return p, nil
}

// RecordVote upserts the voter's vote and the proposal tally in one
// transaction holding the proposal row lock.
func (s *PostgresStore) RecordVote(ctx context.Context, vote models.Vote, validate func(*models.Proposal) error) (*models.Proposal, models.VoteChange, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("begin vote tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p, err := lockProposal(ctx, tx, vote.ProposalID)
	if err != nil {
		return nil, "", err
	}
	if validate != nil {
		if err := validate(p); err != nil {
			return nil, "", err
		}
	}

	var prior *models.Direction
	existing, err := findVote(ctx, tx, vote.ProposalID, vote.VoterID)
	switch {
	case err == nil:
		prior = &existing.Direction
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, "", err
	}

	change := p.ApplyVote(prior, vote.Direction)
	if change == models.VoteUnchanged {
		return p, change, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (proposal_id, voter_id, direction, cast_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (proposal_id, voter_id) DO UPDATE
		SET direction = EXCLUDED.direction, cast_at = EXCLUDED.cast_at
	`, uuid.UUID(vote.ProposalID), uuid.UUID(vote.VoterID), string(vote.Direction), vote.CastAt)
	if err != nil {
		return nil, "", fmt.Errorf("upsert vote: %w", err)
	}
	if err := updateProposal(ctx, tx, p); err != nil {
		return nil, "", err
	}
	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("commit vote tx: %w", err)
	}
	return p, change, nil
}

func lockProposal(ctx context.Context, tx *sql.Tx, proposalID id.ProposalID) (*models.Proposal, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, uuid.UUID(proposalID))
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock proposal: %w", err)
	}
	return p, nil
}

func updateProposal(ctx context.Context, tx *sql.Tx, p *models.Proposal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE proposals
		SET status = $2, votes_for = $3, votes_against = $4, closed_at = $5
		WHERE id = $1
	`, uuid.UUID(p.ID), string(p.Status), p.VotesFor, p.VotesAgainst, p.ClosedAt)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return out, nil
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var (
		p          models.Proposal
		proposalID uuid.UUID
		proposerID uuid.UUID
		status     string
		closedAt   sql.NullTime
	)
	err := row.Scan(
		&proposalID,
		&p.Title,
		&p.Description,
		&status,
		&p.VotesFor,
		&p.VotesAgainst,
		&p.EndDate,
		&proposerID,
		&p.CreatedAt,
		&closedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = id.ProposalID(proposalID)
	p.ProposerID = id.ParticipantID(proposerID)
	p.Status = models.Status(status)
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	return &p, nil
}
