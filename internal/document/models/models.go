// Package models defines the Document metadata entity.
package models

import (
	"time"

	id "intake/pkg/domain"
)

// Document is the metadata row for one stored file. At most one Document
// exists per (submission_id, doc_type); re-uploads replace the row.
type Document struct {
	ID           id.DocumentID
	SubmissionID id.SubmissionID
	DocType      string
	OriginalName string
	StoragePath  string
	SizeBytes    int64
	MIMEType     string
	// Fallback marks a write that landed on the local durable store after the
	// primary remote store failed.
	Fallback  bool
	CreatedAt time.Time
}
