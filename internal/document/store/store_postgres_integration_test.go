//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"intake/internal/document/models"
	"intake/internal/document/store"
	id "intake/pkg/domain"
	"intake/pkg/testutil/containers"
)

type PostgresDocumentStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresDocumentStore
}

func TestPostgresDocumentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDocumentStoreSuite))
}

func (s *PostgresDocumentStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresDocumentStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "documents")
	s.Require().NoError(err)
}

func newTestDocument(sid id.SubmissionID, docType, name string) *models.Document {
	return &models.Document{
		ID:           id.NewDocumentID(),
		SubmissionID: sid,
		DocType:      docType,
		OriginalName: name,
		StoragePath:  "ADMISSIONS/STU-1001/" + name,
		SizeBytes:    1024,
		MIMEType:     "application/pdf",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresDocumentStoreSuite) TestReplaceInsertsWhenEmpty() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	replaced, err := s.store.Replace(ctx, newTestDocument(sid, "passport", "passport.pdf"))
	s.Require().NoError(err)
	s.Nil(replaced)

	docs, err := s.store.ListBySubmission(ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("passport.pdf", docs[0].OriginalName)
}

func (s *PostgresDocumentStoreSuite) TestReplaceReturnsOldRow() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	first := newTestDocument(sid, "passport", "passport-v1.pdf")
	_, err := s.store.Replace(ctx, first)
	s.Require().NoError(err)

	replaced, err := s.store.Replace(ctx, newTestDocument(sid, "passport", "passport-v2.pdf"))
	s.Require().NoError(err)
	s.Require().NotNil(replaced)
	s.Equal(first.ID, replaced.ID)
	s.Equal(first.StoragePath, replaced.StoragePath)

	docs, err := s.store.ListBySubmission(ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("passport-v2.pdf", docs[0].OriginalName)
}

// TestConcurrentReplace verifies the unique index keeps exactly one row per
// (submission, doc_type) under concurrent uploads.
func (s *PostgresDocumentStoreSuite) TestConcurrentReplace() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = s.store.Replace(ctx, newTestDocument(sid, "passport", "passport.pdf"))
		}(i)
	}
	wg.Wait()

	docs, err := s.store.ListBySubmission(ctx, sid)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *PostgresDocumentStoreSuite) TestListDocTypes() {
	ctx := context.Background()
	sid := id.NewSubmissionID()

	_, err := s.store.Replace(ctx, newTestDocument(sid, "passport", "passport.pdf"))
	s.Require().NoError(err)
	_, err = s.store.Replace(ctx, newTestDocument(sid, "birth_certificate", "bc.pdf"))
	s.Require().NoError(err)
	_, err = s.store.Replace(ctx, newTestDocument(id.NewSubmissionID(), "passport", "other.pdf"))
	s.Require().NoError(err)

	types, err := s.store.ListDocTypes(ctx, sid)
	s.Require().NoError(err)
	s.Equal([]string{"birth_certificate", "passport"}, types)
}
