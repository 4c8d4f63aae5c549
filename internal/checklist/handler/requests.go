package handler

import (
	"strings"

	"intake/internal/checklist/models"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
)

// ResolveRequest is the HTTP request body for POST /checklist/resolve.
type ResolveRequest struct {
	Programme   string  `json:"programme"`
	IntakeTerm  string  `json:"intake_term"`
	Campus      string  `json:"campus"`
	Dept        string  `json:"dept"`
	FundingType string  `json:"funding_type"`
	Nationality *string `json:"nationality,omitempty"`
}

// Validate validates and normalizes the request.
func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Programme = strings.TrimSpace(r.Programme)
	if r.Programme == "" {
		return dErrors.New(dErrors.CodeBadRequest, "programme is required")
	}
	r.IntakeTerm = strings.TrimSpace(r.IntakeTerm)
	if r.IntakeTerm == "" {
		return dErrors.New(dErrors.CodeBadRequest, "intake_term is required")
	}
	r.Campus = strings.TrimSpace(r.Campus)

	if !id.Dept(r.Dept).IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "dept must be ADMISSIONS or REGISTRY")
	}
	if !id.FundingType(r.FundingType).IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "funding_type must be GATE or SELF")
	}
	return nil
}

// Query converts the validated body into a domain query.
func (r *ResolveRequest) Query() models.Query {
	return models.Query{
		Programme:   r.Programme,
		IntakeTerm:  r.IntakeTerm,
		Campus:      r.Campus,
		Dept:        id.Dept(r.Dept),
		FundingType: id.FundingType(r.FundingType),
		Nationality: r.Nationality,
	}
}
