// Package store persists Document metadata rows.
package store

import (
	"context"

	"intake/internal/document/models"
	id "intake/pkg/domain"
)

// DocumentStore keeps metadata rows. Replace is the only write path so the
// one-document-per-type invariant holds even under concurrent uploads.
type DocumentStore interface {
	// Replace atomically removes any existing row for
	// (doc.SubmissionID, doc.DocType) and inserts doc. It returns the replaced
	// row when one existed, nil otherwise, so callers can log orphaned bytes.
	Replace(ctx context.Context, doc *models.Document) (*models.Document, error)

	// ListBySubmission returns all documents for a submission, doc_type ascending.
	ListBySubmission(ctx context.Context, sid id.SubmissionID) ([]models.Document, error)

	// ListDocTypes returns the uploaded doc types for a submission, ascending.
	ListDocTypes(ctx context.Context, sid id.SubmissionID) ([]string, error)
}
