// Package models defines the Submission entity and its lifecycle states.
package models

import (
	"time"

	id "intake/pkg/domain"
)

// Status is a submission lifecycle state.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
)

// IsValid reports whether the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusSubmitted, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// InitialStatus returns the state a new submission starts in. Registry
// submissions have no document-gated checklist and start at SUBMITTED.
func InitialStatus(dept id.Dept) Status {
	if dept == id.DeptRegistry {
		return StatusSubmitted
	}
	return StatusInProgress
}

// Submission tracks one student's document submission through its lifecycle.
// Reference is assigned exactly once at submit time and never changes.
type Submission struct {
	ID          id.SubmissionID
	StudentID   string // optional; non-empty values participate in dedup
	Email       string
	FullName    string
	DateOfBirth string // YYYY-MM-DD
	Programme   string
	IntakeTerm  string
	Campus      string
	Nationality *string
	FundingType id.FundingType
	Dept        id.Dept
	Status      Status
	Reference   string

	// Registry-only fields.
	AcademicYear string
	Semester     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRequest carries the student-info fields for Create.
type CreateRequest struct {
	StudentID    string         `json:"student_id"`
	Email        string         `json:"email"`
	FullName     string         `json:"full_name"`
	DateOfBirth  string         `json:"date_of_birth"`
	Programme    string         `json:"programme"`
	IntakeTerm   string         `json:"intake_term"`
	Campus       string         `json:"campus"`
	Nationality  *string        `json:"nationality,omitempty"`
	FundingType  id.FundingType `json:"funding_type"`
	Dept         id.Dept        `json:"dept"`
	AcademicYear string         `json:"academic_year,omitempty"`
	Semester     string         `json:"semester,omitempty"`
}
