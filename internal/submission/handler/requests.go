package handler

import (
	"strings"

	"intake/internal/submission/models"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
)

// CreateRequest is the HTTP request body for POST /submissions. Field-level
// validation lives in the service; the handler only checks shape.
type CreateRequest struct {
	StudentID    string  `json:"student_id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	DateOfBirth  string  `json:"date_of_birth"`
	Programme    string  `json:"programme"`
	IntakeTerm   string  `json:"intake_term"`
	Campus       string  `json:"campus"`
	Nationality  *string `json:"nationality,omitempty"`
	FundingType  string  `json:"funding_type"`
	Dept         string  `json:"dept"`
	AcademicYear string  `json:"academic_year,omitempty"`
	Semester     string  `json:"semester,omitempty"`
}

// Validate normalizes whitespace; domain validation happens in the service so
// the rules live in exactly one place.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Programme = strings.TrimSpace(r.Programme)
	r.IntakeTerm = strings.TrimSpace(r.IntakeTerm)
	r.Campus = strings.TrimSpace(r.Campus)
	return nil
}

// Domain converts the body into the service request.
func (r *CreateRequest) Domain() models.CreateRequest {
	return models.CreateRequest{
		StudentID:    r.StudentID,
		Email:        r.Email,
		FullName:     r.FullName,
		DateOfBirth:  r.DateOfBirth,
		Programme:    r.Programme,
		IntakeTerm:   r.IntakeTerm,
		Campus:       r.Campus,
		Nationality:  r.Nationality,
		FundingType:  id.FundingType(r.FundingType),
		Dept:         id.Dept(r.Dept),
		AcademicYear: r.AcademicYear,
		Semester:     r.Semester,
	}
}

// SetStatusRequest is the HTTP request body for PUT /submissions/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	return nil
}
