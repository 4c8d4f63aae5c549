package store

import (
	"context"
	"sync"

	"intake/internal/checklist/models"
	id "intake/pkg/domain"
)

// InMemoryRuleStore holds the rule catalog in memory. Used in tests and when
// Postgres is not configured.
type InMemoryRuleStore struct {
	mu     sync.RWMutex
	nextID int64
	rules  []models.ChecklistRule
}

func NewMemory() *InMemoryRuleStore {
	return &InMemoryRuleStore{nextID: 1}
}

// Seed loads rules wholesale, marking them active. Test convenience.
func (s *InMemoryRuleStore) Seed(rules ...models.ChecklistRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rules {
		r.ID = s.nextID
		s.nextID++
		r.Active = true
		s.rules = append(s.rules, r)
	}
}

func (s *InMemoryRuleStore) ListActive(_ context.Context, programme, intakeTerm, campus string, dept id.Dept) ([]models.ChecklistRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ChecklistRule
	for _, r := range s.rules {
		if r.Active && r.Programme == programme && r.IntakeTerm == intakeTerm && r.Campus == campus && r.Dept == dept {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryRuleStore) Activate(_ context.Context, rule models.ChecklistRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clear-then-set under one lock so no reader observes two active rows for
	// the same group.
	for i := range s.rules {
		r := &s.rules[i]
		if r.Programme == rule.Programme && r.IntakeTerm == rule.IntakeTerm &&
			r.Campus == rule.Campus && r.Dept == rule.Dept && r.DocType == rule.DocType {
			r.Active = false
		}
	}
	rule.ID = s.nextID
	s.nextID++
	rule.Active = true
	s.rules = append(s.rules, rule)
	return nil
}
