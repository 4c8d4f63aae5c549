package store

import (
	"context"
	"sync"

	id "intake/pkg/domain"
)

type attemptKey struct {
	sid     id.SubmissionID
	docType string
}

type InMemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts map[attemptKey]int
}

func NewMemory() *InMemoryAttemptStore {
	return &InMemoryAttemptStore{attempts: make(map[attemptKey]int)}
}

func (s *InMemoryAttemptStore) Get(_ context.Context, sid id.SubmissionID, docType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts[attemptKey{sid: sid, docType: docType}], nil
}

func (s *InMemoryAttemptStore) Increment(_ context.Context, sid id.SubmissionID, docType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{sid: sid, docType: docType}
	s.attempts[key]++
	return s.attempts[key], nil
}
