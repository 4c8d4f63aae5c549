package handler

import (
	"time"

	docmodels "intake/internal/document/models"
)

// UploadResponse is the HTTP response for a stored document.
type UploadResponse struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	DocType      string    `json:"doc_type"`
	OriginalName string    `json:"original_name"`
	SizeBytes    int64     `json:"size_bytes"`
	MIMEType     string    `json:"mime_type"`
	Fallback     bool      `json:"fallback"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromDocument(doc *docmodels.Document) *UploadResponse {
	return &UploadResponse{
		ID:           doc.ID.String(),
		SubmissionID: doc.SubmissionID.String(),
		DocType:      doc.DocType,
		OriginalName: doc.OriginalName,
		SizeBytes:    doc.SizeBytes,
		MIMEType:     doc.MIMEType,
		Fallback:     doc.Fallback,
		CreatedAt:    doc.CreatedAt,
	}
}
