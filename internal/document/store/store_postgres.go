package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"intake/internal/document/models"
	id "intake/pkg/domain"
	ptx "intake/pkg/platform/tx"
)

// PostgresDocumentStore persists document metadata in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE documents (
//	    id            UUID PRIMARY KEY,
//	    submission_id UUID NOT NULL,
//	    doc_type      TEXT NOT NULL,
//	    original_name TEXT NOT NULL,
//	    storage_path  TEXT NOT NULL,
//	    size_bytes    BIGINT NOT NULL,
//	    mime_type     TEXT NOT NULL,
//	    fallback      BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX documents_submission_doc_type_key
//	    ON documents (submission_id, doc_type);
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// Replace deletes the old row and inserts the new one inside a single
// transaction, so two concurrent uploads for the same (submission, doc_type)
// serialize on the unique index instead of leaving two rows behind. An
// ambient transaction in ctx is joined instead of starting a new one.
func (s *PostgresDocumentStore) Replace(ctx context.Context, doc *models.Document) (*models.Document, error) {
	tx, joined := ptx.From(ctx)
	if !joined {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin replace tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
	}

	row := tx.QueryRowContext(ctx, `
		DELETE FROM documents
		WHERE submission_id = $1 AND doc_type = $2
		RETURNING id, submission_id, doc_type, original_name, storage_path, size_bytes, mime_type, fallback, created_at`,
		uuid.UUID(doc.SubmissionID), doc.DocType)
	replaced, scanErr := scanDocument(row)
	if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		return nil, fmt.Errorf("delete replaced document: %w", scanErr)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, submission_id, doc_type, original_name, storage_path, size_bytes, mime_type, fallback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(doc.ID), uuid.UUID(doc.SubmissionID), doc.DocType, doc.OriginalName,
		doc.StoragePath, doc.SizeBytes, doc.MIMEType, doc.Fallback, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if !joined {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit replace tx: %w", err)
		}
	}
	return replaced, nil
}

func (s *PostgresDocumentStore) ListBySubmission(ctx context.Context, sid id.SubmissionID) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submission_id, doc_type, original_name, storage_path, size_bytes, mime_type, fallback, created_at
		FROM documents WHERE submission_id = $1 ORDER BY doc_type`, uuid.UUID(sid))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func (s *PostgresDocumentStore) ListDocTypes(ctx context.Context, sid id.SubmissionID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_type FROM documents WHERE submission_id = $1 ORDER BY doc_type`, uuid.UUID(sid))
	if err != nil {
		return nil, fmt.Errorf("list doc types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var dt string
		if err := rows.Scan(&dt); err != nil {
			return nil, fmt.Errorf("scan doc type: %w", err)
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc models.Document
		did uuid.UUID
		sid uuid.UUID
	)
	err := row.Scan(&did, &sid, &doc.DocType, &doc.OriginalName, &doc.StoragePath,
		&doc.SizeBytes, &doc.MIMEType, &doc.Fallback, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(did)
	doc.SubmissionID = id.SubmissionID(sid)
	return &doc, nil
}
