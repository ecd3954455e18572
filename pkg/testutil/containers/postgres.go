//go:build integration

package containers

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"ria/internal/platform/database"
	"ria/migrations"
	id "ria/pkg/domain"
)

const postgresImage = "postgres:18-alpine"

// moduleTables lists every migrated table, children before parents.
var moduleTables = []string{
	"audit_events",
	"votes",
	"proposals",
	"ious",
	"settlement_keys",
	"credentials",
	"participants",
}

// PostgresContainer is a migrated database opened through the same pool
// constructor the server uses.
type PostgresContainer struct {
	DB *sql.DB
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("ria_test"),
		postgres.WithUsername("ria"),
		postgres.WithPassword("ria"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	cfg := database.DefaultConfig()
	cfg.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("resolve postgres dsn: %v", err)
	}
	pool, err := database.New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("open postgres pool: %v", err)
	}
	if _, err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		_ = pool.Close()
		t.Fatalf("migrate: %v", err)
	}
	return &PostgresContainer{DB: pool.DB()}
}

// TruncateModuleTables empties every migrated table in one statement.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE "+strings.Join(moduleTables, ", ")+" RESTART IDENTITY CASCADE")
	return err
}

// CreateTestParticipant inserts a participant row with the default vector.
func (p *PostgresContainer) CreateTestParticipant(ctx context.Context, t testing.TB, displayName string) id.ParticipantID {
	t.Helper()
	participantID := id.NewParticipantID()
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO participants (id, display_name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`,
		uuid.UUID(participantID), displayName)
	if err != nil {
		t.Fatalf("insert participant %q: %v", displayName, err)
	}
	return participantID
}
