//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema is the full intake schema, applied once per container. Kept in sync
// with the store package doc comments.
const schema = `
CREATE TABLE IF NOT EXISTS checklist_rules (
    id          BIGSERIAL PRIMARY KEY,
    programme   TEXT NOT NULL,
    intake_term TEXT NOT NULL,
    campus      TEXT NOT NULL,
    dept        TEXT NOT NULL,
    doc_type    TEXT NOT NULL,
    required    BOOLEAN NOT NULL DEFAULT FALSE,
    active      BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS checklist_rules_lookup_idx
    ON checklist_rules (programme, intake_term, campus, dept) WHERE active;

CREATE TABLE IF NOT EXISTS submissions (
    id            UUID PRIMARY KEY,
    student_id    TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL,
    full_name     TEXT NOT NULL,
    date_of_birth TEXT NOT NULL,
    programme     TEXT NOT NULL,
    intake_term   TEXT NOT NULL,
    campus        TEXT NOT NULL,
    nationality   TEXT,
    funding_type  TEXT NOT NULL,
    dept          TEXT NOT NULL,
    status        TEXT NOT NULL,
    reference     TEXT,
    academic_year TEXT NOT NULL DEFAULT '',
    semester      TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS submissions_reference_key ON submissions (reference)
    WHERE reference IS NOT NULL;
CREATE INDEX IF NOT EXISTS submissions_student_dept_idx ON submissions (student_id, dept)
    WHERE student_id <> '';

CREATE TABLE IF NOT EXISTS documents (
    id            UUID PRIMARY KEY,
    submission_id UUID NOT NULL,
    doc_type      TEXT NOT NULL,
    original_name TEXT NOT NULL,
    storage_path  TEXT NOT NULL,
    size_bytes    BIGINT NOT NULL,
    mime_type     TEXT NOT NULL,
    fallback      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_submission_doc_type_key
    ON documents (submission_id, doc_type);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the intake
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("intake_test"),
		tcpostgres.WithUsername("intake"),
		tcpostgres.WithPassword("intake"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	return err
}
