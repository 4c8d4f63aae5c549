package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"intake/internal/submission/models"
	id "intake/pkg/domain"
	"intake/pkg/platform/sentinel"
	ptx "intake/pkg/platform/tx"
)

// PostgresSubmissionStore persists submissions in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE submissions (
//	    id            UUID PRIMARY KEY,
//	    student_id    TEXT NOT NULL DEFAULT '',
//	    email         TEXT NOT NULL,
//	    full_name     TEXT NOT NULL,
//	    date_of_birth TEXT NOT NULL,
//	    programme     TEXT NOT NULL,
//	    intake_term   TEXT NOT NULL,
//	    campus        TEXT NOT NULL,
//	    nationality   TEXT,
//	    funding_type  TEXT NOT NULL,
//	    dept          TEXT NOT NULL,
//	    status        TEXT NOT NULL,
//	    reference     TEXT,
//	    academic_year TEXT NOT NULL DEFAULT '',
//	    semester      TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX submissions_reference_key ON submissions (reference)
//	    WHERE reference IS NOT NULL;
//	CREATE INDEX submissions_student_dept_idx ON submissions (student_id, dept)
//	    WHERE student_id <> '';
type PostgresSubmissionStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresSubmissionStore {
	return &PostgresSubmissionStore{db: db}
}

const submissionColumns = `id, student_id, email, full_name, date_of_birth, programme,
	intake_term, campus, nationality, funding_type, dept, status, reference,
	academic_year, semester, created_at, updated_at`

func (s *PostgresSubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		uuid.UUID(sub.ID), sub.StudentID, sub.Email, sub.FullName, sub.DateOfBirth,
		sub.Programme, sub.IntakeTerm, sub.Campus, sub.Nationality,
		string(sub.FundingType), string(sub.Dept), string(sub.Status),
		nullString(sub.Reference), sub.AcademicYear, sub.Semester,
		sub.CreatedAt, sub.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresSubmissionStore) FindByID(ctx context.Context, sid id.SubmissionID) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, uuid.UUID(sid))
	return scanSubmission(row)
}

func (s *PostgresSubmissionStore) FindByStudentAndDept(ctx context.Context, studentID string, dept id.Dept) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE student_id = $1 AND dept = $2
		ORDER BY created_at LIMIT 1`, studentID, string(dept))
	return scanSubmission(row)
}

// UpdateAtomic locks the submission row, applies fn to the current values and
// writes the result back, all in one transaction. Concurrent submit and
// setStatus calls serialize on the row lock instead of losing updates. An
// ambient transaction in ctx is joined instead of starting a new one; its
// owner commits.
func (s *PostgresSubmissionStore) UpdateAtomic(ctx context.Context, sid id.SubmissionID, fn func(*models.Submission) error) (*models.Submission, error) {
	tx, joined := ptx.From(ctx)
	if !joined {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin submission tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, uuid.UUID(sid))
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}

	if err := fn(sub); err != nil {
		return nil, err
	}
	sub.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE submissions
		SET status = $2, reference = $3, updated_at = $4
		WHERE id = $1`,
		uuid.UUID(sid), string(sub.Status), nullString(sub.Reference), sub.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, sentinel.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}

	if !joined {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit submission tx: %w", err)
		}
	}
	return sub, nil
}

func (s *PostgresSubmissionStore) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE reference = $1)`, ref).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub       models.Submission
		uid       uuid.UUID
		funding   string
		dept      string
		status    string
		reference sql.NullString
	)
	err := row.Scan(&uid, &sub.StudentID, &sub.Email, &sub.FullName, &sub.DateOfBirth,
		&sub.Programme, &sub.IntakeTerm, &sub.Campus, &sub.Nationality,
		&funding, &dept, &status, &reference,
		&sub.AcademicYear, &sub.Semester, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.ID = id.SubmissionID(uid)
	sub.FundingType = id.FundingType(funding)
	sub.Dept = id.Dept(dept)
	sub.Status = models.Status(status)
	sub.Reference = reference.String
	return &sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
