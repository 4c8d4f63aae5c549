package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"intake/internal/document/blob"
	"intake/internal/document/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/circuit"
)

// =============================================================================
// Document Store Test Suite
// =============================================================================
// The write path must survive a primary failure without losing data or
// breaking the one-document-per-type invariant, so both branches and the
// replace semantics are exercised here with fake blob stores.

type fakeBlobStore struct {
	err   error
	calls int
	paths []string
	data  [][]byte
}

func (f *fakeBlobStore) Put(_ context.Context, path string, data []byte) (blob.StoredObject, error) {
	f.calls++
	if f.err != nil {
		return blob.StoredObject{}, f.err
	}
	f.paths = append(f.paths, path)
	f.data = append(f.data, data)
	return blob.StoredObject{ID: "obj-1", Path: path}, nil
}

type DocumentServiceSuite struct {
	suite.Suite
	docs     *store.InMemoryDocumentStore
	primary  *fakeBlobStore
	fallback *fakeBlobStore
	service  *Service
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.docs = store.NewMemory()
	s.primary = &fakeBlobStore{}
	s.fallback = &fakeBlobStore{}

	var err error
	s.service, err = New(s.docs, s.fallback, WithPrimary(s.primary))
	s.Require().NoError(err)
}

func validPut(sid id.SubmissionID) PutRequest {
	return PutRequest{
		SubmissionID: sid,
		Dept:         id.DeptAdmissions,
		StudentID:    "STU-1001",
		DocType:      "passport",
		Data:         []byte("%PDF-1.7 fake"),
		OriginalName: "passport.pdf",
		MIMEType:     AllowedMIMEType,
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func (s *DocumentServiceSuite) TestValidationRejectsBeforeAnyStoreCall() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	s.Run("wrong mime type", func() {
		req := validPut(sid)
		req.MIMEType = "image/png"
		_, err := s.service.Put(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("oversize file", func() {
		req := validPut(sid)
		req.Data = bytes.Repeat([]byte("a"), 12<<20)
		_, err := s.service.Put(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("empty file", func() {
		req := validPut(sid)
		req.Data = nil
		_, err := s.service.Put(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing doc type", func() {
		req := validPut(sid)
		req.DocType = ""
		_, err := s.service.Put(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Equal(0, s.primary.calls, "validation failures must not reach the primary store")
	s.Equal(0, s.fallback.calls, "validation failures must not reach the fallback store")
}

// =============================================================================
// Write Path Tests
// =============================================================================

func (s *DocumentServiceSuite) TestPrimaryWrite() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	doc, err := s.service.Put(ctx, validPut(sid))
	s.Require().NoError(err)
	s.False(doc.Fallback)
	s.Equal(1, s.primary.calls)
	s.Equal(0, s.fallback.calls)
	s.Contains(doc.StoragePath, "ADMISSIONS/STU-1001/")
	s.Contains(doc.StoragePath, "passport_")
	s.Equal(int64(len(validPut(sid).Data)), doc.SizeBytes)
}

func (s *DocumentServiceSuite) TestPrimaryFailureFallsBack() {
	ctx := context.Background()
	sid := id.NewSubmissionID()
	s.primary.err = errors.New("quota exceeded")

	doc, err := s.service.Put(ctx, validPut(sid))
	s.Require().NoError(err)
	s.True(doc.Fallback, "document must be marked as a fallback write")
	s.Equal(1, s.primary.calls)
	s.Equal(1, s.fallback.calls)
	s.Regexp(`^ADMISSIONS/\d{4}/STU-1001/`, doc.StoragePath)
}

func (s *DocumentServiceSuite) TestFallbackFailureIsFatal() {
	ctx := context.Background()
	s.primary.err = errors.New("network unreachable")
	s.fallback.err = errors.New("disk full")

	_, err := s.service.Put(ctx, validPut(id.NewSubmissionID()))
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *DocumentServiceSuite) TestNoPrimaryConfigured() {
	ctx := context.Background()
	svc, err := New(s.docs, s.fallback)
	s.Require().NoError(err)

	doc, err := svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.True(doc.Fallback)
	s.Equal(0, s.primary.calls)
}

func (s *DocumentServiceSuite) TestOpenBreakerSkipsPrimary() {
	ctx := context.Background()
	breaker := circuit.New("object-store", circuit.WithFailureThreshold(1))
	svc, err := New(s.docs, s.fallback, WithPrimary(s.primary), WithBreaker(breaker))
	s.Require().NoError(err)

	s.primary.err = errors.New("timeout")
	_, err = svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.True(breaker.IsOpen())

	s.primary.err = nil
	doc, err := svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.True(doc.Fallback)
	s.Equal(1, s.primary.calls, "open breaker must route straight to fallback")
}

func (s *DocumentServiceSuite) TestBreakerReclosesAfterRecovery() {
	ctx := context.Background()
	breaker := circuit.New("object-store",
		circuit.WithFailureThreshold(1), circuit.WithCooldown(20*time.Millisecond))
	svc, err := New(s.docs, s.fallback, WithPrimary(s.primary), WithBreaker(breaker))
	s.Require().NoError(err)

	s.primary.err = errors.New("timeout")
	_, err = svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.Require().True(breaker.IsOpen())

	// The primary recovers, but writes inside the cooldown still go to the
	// fallback.
	s.primary.err = nil
	doc, err := svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.True(doc.Fallback)
	s.Equal(1, s.primary.calls)

	// After the cooldown one probe reaches the primary and recloses the
	// breaker.
	time.Sleep(40 * time.Millisecond)
	doc, err = svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.False(doc.Fallback, "recovered primary must take writes again")
	s.Equal(2, s.primary.calls)
	s.False(breaker.IsOpen())

	doc, err = svc.Put(ctx, validPut(id.NewSubmissionID()))
	s.Require().NoError(err)
	s.False(doc.Fallback)
	s.Equal(3, s.primary.calls, "closed breaker keeps using the primary")
}

// =============================================================================
// Replace Semantics Tests
// =============================================================================

func (s *DocumentServiceSuite) TestReuploadReplacesRow() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	first, err := s.service.Put(ctx, validPut(sid))
	s.Require().NoError(err)

	req := validPut(sid)
	req.OriginalName = "passport-renewed.pdf"
	req.Data = []byte("%PDF-1.7 renewed scan")
	second, err := s.service.Put(ctx, req)
	s.Require().NoError(err)

	docs, err := s.service.ListBySubmission(ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(docs, 1, "exactly one document per (submission, doc_type)")
	s.Equal(second.ID, docs[0].ID)
	s.Equal("passport-renewed.pdf", docs[0].OriginalName)
	s.Equal(int64(len(req.Data)), docs[0].SizeBytes)
	s.NotEqual(first.StoragePath, docs[0].StoragePath)
}

func (s *DocumentServiceSuite) TestDistinctDocTypesCoexist() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	_, err := s.service.Put(ctx, validPut(sid))
	s.Require().NoError(err)

	req := validPut(sid)
	req.DocType = "birth_certificate"
	_, err = s.service.Put(ctx, req)
	s.Require().NoError(err)

	types, err := s.service.ListDocTypes(ctx, sid)
	s.Require().NoError(err)
	s.Equal([]string{"birth_certificate", "passport"}, types)
}
