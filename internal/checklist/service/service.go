// Package service implements the checklist rule engine. One Resolve backs both
// the student-facing checklist and the submit gate so the rule logic is never
// duplicated.
package service

import (
	"context"
	"fmt"
	"sort"

	"intake/internal/checklist/models"
	"intake/internal/checklist/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
)

type Service struct {
	rules store.RuleStore
}

func New(rules store.RuleStore) (*Service, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule store is required")
	}
	return &Service{rules: rules}, nil
}

// predicate decides whether a catalog rule survives one filtering stage.
// Keeping the stages as independent functions keeps each one unit-testable.
type predicate func(models.ChecklistRule) bool

// excludePersonalStatement drops personal_statement unconditionally. No
// applicant is ever required, or offered, to supply one.
func excludePersonalStatement(r models.ChecklistRule) bool {
	return r.DocType != models.DocTypePersonalStatement
}

// fundingFilter drops gate_approval for self-funded students.
func fundingFilter(funding id.FundingType) predicate {
	return func(r models.ChecklistRule) bool {
		if funding == id.FundingSelf {
			return r.DocType != models.DocTypeGateApproval
		}
		return true
	}
}

// nationalityFilter implements the identity-document exception: TT nationals
// never supply a passport, every other stated nationality never supplies a
// national id or birth certificate. An absent nationality skips the filter.
func nationalityFilter(nationality *string) predicate {
	return func(r models.ChecklistRule) bool {
		if nationality == nil {
			return true
		}
		if *nationality == models.NationalityTT {
			return r.DocType != models.DocTypePassport
		}
		return r.DocType != models.DocTypeNationalID && r.DocType != models.DocTypeBirthCertificate
	}
}

// Resolve computes the checklist for one student. The combined view is ordered
// required-first then doc_type ascending. An empty result is valid: it means
// the catalog has no requirements for this combination, not an error.
func (s *Service) Resolve(ctx context.Context, q models.Query) ([]models.ChecklistItem, error) {
	if !q.Dept.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown department %q", q.Dept)
	}
	if !q.FundingType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown funding type %q", q.FundingType)
	}

	rules, err := s.rules.ListActive(ctx, q.Programme, q.IntakeTerm, q.Campus, q.Dept)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rule catalog")
	}

	pipeline := []predicate{
		excludePersonalStatement,
		fundingFilter(q.FundingType),
		nationalityFilter(q.Nationality),
	}

	items := make([]models.ChecklistItem, 0, len(rules))
rules:
	for _, r := range rules {
		for _, keep := range pipeline {
			if !keep(r) {
				continue rules
			}
		}
		items = append(items, models.ChecklistItem{
			DocType:     r.DocType,
			DisplayName: models.DisplayName(r.DocType),
			Required:    r.Required,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Required != items[j].Required {
			return items[i].Required
		}
		return items[i].DocType < items[j].DocType
	})
	return items, nil
}

// ResolveRequired returns only the required doc types, ordered ascending. This
// is the submit gate's view of the checklist.
func (s *Service) ResolveRequired(ctx context.Context, q models.Query) ([]string, error) {
	items, err := s.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Required {
			out = append(out, it.DocType)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ResolveOptional returns only the optional doc types, ordered ascending.
func (s *Service) ResolveOptional(ctx context.Context, q models.Query) ([]string, error) {
	items, err := s.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !it.Required {
			out = append(out, it.DocType)
		}
	}
	sort.Strings(out)
	return out, nil
}
