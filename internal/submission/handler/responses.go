package handler

import (
	"time"

	docmodels "intake/internal/document/models"
	"intake/internal/submission/models"
)

// SubmissionResponse is the HTTP shape of one submission.
type SubmissionResponse struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id,omitempty"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	DateOfBirth  string    `json:"date_of_birth"`
	Programme    string    `json:"programme"`
	IntakeTerm   string    `json:"intake_term"`
	Campus       string    `json:"campus"`
	Nationality  *string   `json:"nationality,omitempty"`
	FundingType  string    `json:"funding_type"`
	Dept         string    `json:"dept"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference,omitempty"`
	AcademicYear string    `json:"academic_year,omitempty"`
	Semester     string    `json:"semester,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromSubmission(sub *models.Submission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:           sub.ID.String(),
		StudentID:    sub.StudentID,
		Email:        sub.Email,
		FullName:     sub.FullName,
		DateOfBirth:  sub.DateOfBirth,
		Programme:    sub.Programme,
		IntakeTerm:   sub.IntakeTerm,
		Campus:       sub.Campus,
		Nationality:  sub.Nationality,
		FundingType:  string(sub.FundingType),
		Dept:         string(sub.Dept),
		Status:       string(sub.Status),
		Reference:    sub.Reference,
		AcademicYear: sub.AcademicYear,
		Semester:     sub.Semester,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
	}
}

// IncompleteResponse is the 422 body for a submit attempt with missing
// required documents.
type IncompleteResponse struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description"`
	Missing          []string `json:"missing"`
}

// DocumentResponse is the HTTP shape of one uploaded document.
type DocumentResponse struct {
	ID           string    `json:"id"`
	DocType      string    `json:"doc_type"`
	OriginalName string    `json:"original_name"`
	SizeBytes    int64     `json:"size_bytes"`
	MIMEType     string    `json:"mime_type"`
	Fallback     bool      `json:"fallback"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentListResponse is the HTTP response for GET /submissions/{id}/documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func FromDocument(doc *docmodels.Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID.String(),
		DocType:      doc.DocType,
		OriginalName: doc.OriginalName,
		SizeBytes:    doc.SizeBytes,
		MIMEType:     doc.MIMEType,
		Fallback:     doc.Fallback,
		CreatedAt:    doc.CreatedAt,
	}
}

func FromDocuments(docs []docmodels.Document) *DocumentListResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, FromDocument(&docs[i]))
	}
	return &DocumentListResponse{Documents: out}
}
