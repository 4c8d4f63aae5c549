// Package store tracks failed upload attempts per (submission, doc type).
package store

import (
	"context"

	id "intake/pkg/domain"
)

// AttemptStore counts failed upload attempts. Counters survive a later
// success so the cap bounds total retries, not consecutive ones.
type AttemptStore interface {
	// Get returns the current failure count, zero when none recorded.
	Get(ctx context.Context, sid id.SubmissionID, docType string) (int, error)

	// Increment bumps the failure count and returns the new value.
	Increment(ctx context.Context, sid id.SubmissionID, docType string) (int, error)
}
