// Package store persists Submission records.
package store

import (
	"context"

	"intake/internal/submission/models"
	id "intake/pkg/domain"
)

// SubmissionStore is interface-driven so the lifecycle service stays testable
// against the in-memory implementation.
type SubmissionStore interface {
	// Create inserts a new submission. Returns sentinel.ErrConflict when the
	// reference (if set) is already taken.
	Create(ctx context.Context, sub *models.Submission) error

	// FindByID returns sentinel.ErrNotFound when the submission does not exist.
	FindByID(ctx context.Context, sid id.SubmissionID) (*models.Submission, error)

	// FindByStudentAndDept locates the dedup target for a non-empty student ID.
	// Returns sentinel.ErrNotFound when no record exists.
	FindByStudentAndDept(ctx context.Context, studentID string, dept id.Dept) (*models.Submission, error)

	// UpdateAtomic applies fn to the current row under a row-scoped
	// transaction so concurrent submit/setStatus calls cannot lose updates.
	// fn returning an error aborts with no mutation. Returns the updated
	// submission. Returns sentinel.ErrConflict when a reference written by fn
	// is already taken.
	UpdateAtomic(ctx context.Context, sid id.SubmissionID, fn func(*models.Submission) error) (*models.Submission, error)

	// ReferenceExists reports whether any submission already holds ref.
	ReferenceExists(ctx context.Context, ref string) (bool, error)
}
