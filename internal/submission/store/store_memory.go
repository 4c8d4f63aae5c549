package store

import (
	"context"
	"sync"
	"time"

	"intake/internal/submission/models"
	id "intake/pkg/domain"
	"intake/pkg/platform/sentinel"
)

// InMemorySubmissionStore keeps submissions in a map. Used in tests and when
// Postgres is not configured.
type InMemorySubmissionStore struct {
	mu          sync.RWMutex
	submissions map[id.SubmissionID]*models.Submission
	references  map[string]bool
}

func NewMemory() *InMemorySubmissionStore {
	return &InMemorySubmissionStore{
		submissions: make(map[id.SubmissionID]*models.Submission),
		references:  make(map[string]bool),
	}
}

func (s *InMemorySubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.Reference != "" && s.references[sub.Reference] {
		return sentinel.ErrConflict
	}
	cp := *sub
	s.submissions[sub.ID] = &cp
	if sub.Reference != "" {
		s.references[sub.Reference] = true
	}
	return nil
}

func (s *InMemorySubmissionStore) FindByID(_ context.Context, sid id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[sid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemorySubmissionStore) FindByStudentAndDept(_ context.Context, studentID string, dept id.Dept) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The earliest-created match wins, mirroring the Postgres store's
	// ORDER BY created_at under pre-existing duplicates.
	var earliest *models.Submission
	for _, sub := range s.submissions {
		if sub.StudentID != studentID || sub.Dept != dept {
			continue
		}
		if earliest == nil || sub.CreatedAt.Before(earliest.CreatedAt) {
			earliest = sub
		}
	}
	if earliest == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *earliest
	return &cp, nil
}

func (s *InMemorySubmissionStore) UpdateAtomic(_ context.Context, sid id.SubmissionID, fn func(*models.Submission) error) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[sid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	cp := *sub
	if err := fn(&cp); err != nil {
		return nil, err
	}
	if cp.Reference != sub.Reference && cp.Reference != "" {
		if s.references[cp.Reference] {
			return nil, sentinel.ErrConflict
		}
		s.references[cp.Reference] = true
	}
	cp.UpdatedAt = time.Now().UTC()
	s.submissions[sid] = &cp
	out := cp
	return &out, nil
}

func (s *InMemorySubmissionStore) ReferenceExists(_ context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.references[ref], nil
}
