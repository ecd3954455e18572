package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ria/internal/iou/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

const iouColumns = `id, kind, description, value, issuer_id, recipient_id, due_date, status, risk_score, trust_score, created_at, updated_at, version, settled_at`

// PostgresStore persists IOUs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) Create(ctx context.Context, iou *models.IOU) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ious (`+iouColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, insertArgs(iou)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert iou: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, iouID id.IOUID) (*models.IOU, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+iouColumns+` FROM ious WHERE id = $1`, uuid.UUID(iouID))
	iou, err := scanIOU(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find iou: %w", err)
	}
	return iou, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.IOU, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.IssuerID != nil {
		args = append(args, uuid.UUID(*filter.IssuerID))
		clauses = append(clauses, fmt.Sprintf("issuer_id = $%d", len(args)))
	}
	if filter.RecipientID != nil {
		args = append(args, uuid.UUID(*filter.RecipientID))
		clauses = append(clauses, fmt.Sprintf("recipient_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + iouColumns + ` FROM ious`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	return s.query(ctx, query, args...)
}

func (s *PostgresStore) ListAvailable(ctx context.Context, query string, limit int) ([]*models.IOU, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return s.query(ctx, `
		SELECT `+iouColumns+` FROM ious
		WHERE status = 'outstanding' AND recipient_id IS NULL AND description ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, pattern, limit)
}

func (s *PostgresStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.IOU, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx, `
		SELECT `+iouColumns+` FROM ious
		WHERE status IN ('outstanding', 'accepted') AND due_date < $1
		ORDER BY due_date
		LIMIT $2
	`, now, limit)
}

// ListUnsettled returns terminal IOUs whose settlement is still pending,
// least recently updated first.
func (s *PostgresStore) ListUnsettled(ctx context.Context, limit int) ([]*models.IOU, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx, `
		SELECT `+iouColumns+` FROM ious
		WHERE status IN ('fulfilled', 'expired') AND settled_at IS NULL
		ORDER BY updated_at
		LIMIT $1
	`, limit)
}

// Execute locks the IOU row, validates, mutates and writes back in one
// transaction.
func (s *PostgresStore) Execute(ctx context.Context, iouID id.IOUID, validate func(*models.IOU) error, mutate func(*models.IOU)) (*models.IOU, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin iou execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+iouColumns+` FROM ious WHERE id = $1 FOR UPDATE`, uuid.UUID(iouID))
	iou, err := scanIOU(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock iou: %w", err)
	}

	if validate != nil {
		if err := validate(iou); err != nil {
			return nil, err
		}
	}
	mutate(iou)

	_, err = tx.ExecContext(ctx, `
		UPDATE ious
		SET description = $2, recipient_id = $3, status = $4, trust_score = $5, updated_at = $6, version = $7, settled_at = $8
		WHERE id = $1
	`,
		uuid.UUID(iou.ID),
		iou.Description,
		nullableParticipant(iou.RecipientID),
		string(iou.Status),
		nullableScore(iou.TrustScore),
		iou.UpdatedAt,
		iou.Version,
		nullableTime(iou.SettledAt),
	)
	if err != nil {
		return nil, fmt.Errorf("update iou: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit iou execute tx: %w", err)
	}
	return iou, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.IOU, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ious: %w", err)
	}
	defer rows.Close()

	out := make([]*models.IOU, 0)
	for rows.Next() {
		iou, err := scanIOU(rows)
		if err != nil {
			return nil, fmt.Errorf("scan iou: %w", err)
		}
		out = append(out, iou)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ious: %w", err)
	}
	return out, nil
}

func insertArgs(iou *models.IOU) []any {
	return []any{
		uuid.UUID(iou.ID),
		string(iou.Kind),
		iou.Description,
		iou.Value,
		uuid.UUID(iou.IssuerID),
		nullableParticipant(iou.RecipientID),
		iou.DueDate,
		string(iou.Status),
		nullableScore(iou.RiskScore),
		nullableScore(iou.TrustScore),
		iou.CreatedAt,
		iou.UpdatedAt,
		iou.Version,
		nullableTime(iou.SettledAt),
	}
}

func scanIOU(row rowScanner) (*models.IOU, error) {
	var (
		iou        models.IOU
		iouID      uuid.UUID
		issuerID   uuid.UUID
		recipient  uuid.NullUUID
		kind       string
		status     string
		riskScore  sql.NullInt64
		trustScore sql.NullInt64
		settledAt  sql.NullTime
	)
	err := row.Scan(
		&iouID,
		&kind,
		&iou.Description,
		&iou.Value,
		&issuerID,
		&recipient,
		&iou.DueDate,
		&status,
		&riskScore,
		&trustScore,
		&iou.CreatedAt,
		&iou.UpdatedAt,
		&iou.Version,
		&settledAt,
	)
	if err != nil {
		return nil, err
	}
	iou.ID = id.IOUID(iouID)
	iou.IssuerID = id.ParticipantID(issuerID)
	iou.Kind = models.Kind(kind)
	iou.Status = models.Status(status)
	if recipient.Valid {
		r := id.ParticipantID(recipient.UUID)
		iou.RecipientID = &r
	}
	iou.RiskScore = scoreFromNull(riskScore)
	iou.TrustScore = scoreFromNull(trustScore)
	if settledAt.Valid {
		t := settledAt.Time
		iou.SettledAt = &t
	}
	return &iou, nil
}

func nullableParticipant(p *id.ParticipantID) uuid.NullUUID {
	if p == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*p), Valid: true}
}

func nullableScore(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scoreFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
