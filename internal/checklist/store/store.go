// Package store persists the checklist rule catalog.
package store

import (
	"context"

	"intake/internal/checklist/models"
	id "intake/pkg/domain"
)

// RuleStore reads and maintains the rule catalog. ListActive is the rule
// engine's only read path; Activate is catalog maintenance.
type RuleStore interface {
	// ListActive returns the active rules matching the tuple exactly.
	ListActive(ctx context.Context, programme, intakeTerm, campus string, dept id.Dept) ([]models.ChecklistRule, error)

	// Activate makes rule the single active row for its
	// (programme, intake_term, campus, dept, doc_type) group, deactivating any
	// others in the same group atomically.
	Activate(ctx context.Context, rule models.ChecklistRule) error
}
