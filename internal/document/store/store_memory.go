package store

import (
	"context"
	"sort"
	"sync"

	"intake/internal/document/models"
	id "intake/pkg/domain"
)

type docKey struct {
	sid     id.SubmissionID
	docType string
}

// InMemoryDocumentStore keeps document metadata in a map keyed by
// (submission_id, doc_type), which makes the replace upsert a single map write
// under one lock.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[docKey]*models.Document
}

func NewMemory() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[docKey]*models.Document)}
}

func (s *InMemoryDocumentStore) Replace(_ context.Context, doc *models.Document) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey{sid: doc.SubmissionID, docType: doc.DocType}
	var replaced *models.Document
	if old, ok := s.docs[key]; ok {
		cp := *old
		replaced = &cp
	}
	cp := *doc
	s.docs[key] = &cp
	return replaced, nil
}

func (s *InMemoryDocumentStore) ListBySubmission(_ context.Context, sid id.SubmissionID) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Document
	for key, doc := range s.docs {
		if key.sid == sid {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocType < out[j].DocType })
	return out, nil
}

func (s *InMemoryDocumentStore) ListDocTypes(ctx context.Context, sid id.SubmissionID) ([]string, error) {
	docs, err := s.ListBySubmission(ctx, sid)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.DocType)
	}
	return out, nil
}
