package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	checklistmodels "intake/internal/checklist/models"
	"intake/internal/notify"
	"intake/internal/submission/models"
	"intake/internal/submission/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
)

// =============================================================================
// Submission Lifecycle Test Suite
// =============================================================================
// The lifecycle manager is the only place the checklist gate, reference
// allocation, and dedup compose, so their interactions are exercised here
// against the in-memory store with stubbed collaborators.

type stubChecklist struct {
	required []string
	err      error
}

func (s *stubChecklist) ResolveRequired(context.Context, checklistmodels.Query) ([]string, error) {
	return s.required, s.err
}

type stubDocs struct {
	uploaded []string
}

func (s *stubDocs) ListDocTypes(context.Context, id.SubmissionID) ([]string, error) {
	return s.uploaded, nil
}

type recordingDispatcher struct {
	mu    sync.Mutex
	kinds []notify.Kind
	fail  bool
	done  chan struct{}
}

func newRecordingDispatcher(expected int) *recordingDispatcher {
	d := &recordingDispatcher{done: make(chan struct{}, expected)}
	return d
}

func (d *recordingDispatcher) Send(_ context.Context, kind notify.Kind, _ notify.Payload) error {
	d.mu.Lock()
	d.kinds = append(d.kinds, kind)
	d.mu.Unlock()
	d.done <- struct{}{}
	if d.fail {
		return errors.New("smtp relay down")
	}
	return nil
}

func (d *recordingDispatcher) wait(n int) {
	for i := 0; i < n; i++ {
		<-d.done
	}
}

type SubmissionServiceSuite struct {
	suite.Suite
	store      *store.InMemorySubmissionStore
	checklist  *stubChecklist
	docs       *stubDocs
	dispatcher *recordingDispatcher
	service    *Service
}

func TestSubmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmissionServiceSuite))
}

func (s *SubmissionServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.checklist = &stubChecklist{}
	s.docs = &stubDocs{}
	s.dispatcher = newRecordingDispatcher(8)

	var err error
	s.service, err = New(s.store, s.checklist, s.docs, WithDispatcher(s.dispatcher))
	s.Require().NoError(err)
}

func validCreate() models.CreateRequest {
	return models.CreateRequest{
		StudentID:   "STU-1001",
		Email:       "jdoe@example.com",
		FullName:    "Jane Doe",
		DateOfBirth: "2002-04-17",
		Programme:   "General Nursing",
		IntakeTerm:  "2026-09",
		Campus:      "North",
		FundingType: id.FundingGATE,
		Dept:        id.DeptAdmissions,
	}
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("admissions submission starts in progress", func() {
		sub, _, err := s.service.Create(ctx, validCreate())
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, sub.Status)
		s.Empty(sub.Reference)
		s.False(sub.ID.IsNil())
	})

	s.Run("registry submission starts submitted", func() {
		req := validCreate()
		req.StudentID = "STU-2002"
		req.Dept = id.DeptRegistry
		req.AcademicYear = "2026/2027"
		req.Semester = "1"
		sub, _, err := s.service.Create(ctx, req)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, sub.Status)
	})
}

func (s *SubmissionServiceSuite) TestCreateValidation() {
	ctx := context.Background()

	cases := map[string]func(*models.CreateRequest){
		"bad email":               func(r *models.CreateRequest) { r.Email = "not-an-email" },
		"missing email":           func(r *models.CreateRequest) { r.Email = "" },
		"missing name":            func(r *models.CreateRequest) { r.FullName = "" },
		"bad date of birth":       func(r *models.CreateRequest) { r.DateOfBirth = "17/04/2002" },
		"missing programme":       func(r *models.CreateRequest) { r.Programme = "" },
		"missing term":            func(r *models.CreateRequest) { r.IntakeTerm = "" },
		"missing campus":          func(r *models.CreateRequest) { r.Campus = "" },
		"unknown dept":            func(r *models.CreateRequest) { r.Dept = "FINANCE" },
		"unknown funding":         func(r *models.CreateRequest) { r.FundingType = "LOAN" },
		"registry without year":   func(r *models.CreateRequest) { r.Dept = id.DeptRegistry; r.Semester = "1" },
		"registry without semstr": func(r *models.CreateRequest) { r.Dept = id.DeptRegistry; r.AcademicYear = "2026/2027" },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := validCreate()
			mutate(&req)
			_, _, err := s.service.Create(ctx, req)
			s.Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "expected bad_request, got %v", err)
		})
	}
}

func (s *SubmissionServiceSuite) TestCreateDedup() {
	ctx := context.Background()

	first, created, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)
	s.True(created)

	second, created, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)
	s.False(created, "dedup must report the record as existing")
	s.Equal(first.ID, second.ID, "same student and dept must return the existing submission")

	s.Run("different dept creates a new record", func() {
		req := validCreate()
		req.Dept = id.DeptRegistry
		req.AcademicYear = "2026/2027"
		req.Semester = "1"
		third, _, err := s.service.Create(ctx, req)
		s.Require().NoError(err)
		s.NotEqual(first.ID, third.ID)
	})

	s.Run("empty student id never dedups", func() {
		req := validCreate()
		req.StudentID = ""
		a, _, err := s.service.Create(ctx, req)
		s.Require().NoError(err)
		b, _, err := s.service.Create(ctx, req)
		s.Require().NoError(err)
		s.NotEqual(a.ID, b.ID)
	})
}

// =============================================================================
// Submit Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestSubmitIncomplete() {
	ctx := context.Background()
	s.checklist.required = []string{"national_id", "passport_photo"}
	s.docs.uploaded = []string{"national_id"}

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	_, err = s.service.Submit(ctx, sub.ID)
	s.Require().Error(err)

	var incomplete *IncompleteSubmissionError
	s.Require().ErrorAs(err, &incomplete)
	s.Equal([]string{"passport_photo"}, incomplete.Missing)

	// No mutation on a rejected submit.
	unchanged, err := s.service.Get(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, unchanged.Status)
	s.Empty(unchanged.Reference)
}

func (s *SubmissionServiceSuite) TestSubmitComplete() {
	ctx := context.Background()
	s.checklist.required = []string{"national_id"}
	s.docs.uploaded = []string{"national_id", "academic_transcript"}

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	submitted, err := s.service.Submit(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, submitted.Status)
	s.Regexp(`^ADM\d{4}[A-Z0-9]{6}$`, submitted.Reference)

	s.dispatcher.wait(2)
	s.ElementsMatch([]notify.Kind{notify.KindSubmissionConfirmation, notify.KindDepartmentNotification}, s.dispatcher.kinds)
}

func (s *SubmissionServiceSuite) TestSubmitEmptyChecklistPasses() {
	ctx := context.Background()
	s.checklist.required = nil
	s.docs.uploaded = nil

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	submitted, err := s.service.Submit(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, submitted.Status)
}

func (s *SubmissionServiceSuite) TestSubmitReferenceAssignedOnce() {
	ctx := context.Background()
	s.checklist.required = nil

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	first, err := s.service.Submit(ctx, sub.ID)
	s.Require().NoError(err)
	s.NotEmpty(first.Reference)

	second, err := s.service.Submit(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(first.Reference, second.Reference, "reference is immutable once assigned")
}

func (s *SubmissionServiceSuite) TestSubmitNotificationFailureDoesNotChangeOutcome() {
	ctx := context.Background()
	s.checklist.required = nil
	s.dispatcher.fail = true

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	submitted, err := s.service.Submit(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, submitted.Status)
	s.dispatcher.wait(2)
}

func (s *SubmissionServiceSuite) TestSubmitUnknownSubmission() {
	ctx := context.Background()
	_, err := s.service.Submit(ctx, id.NewSubmissionID())
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// SetStatus Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestSetStatus() {
	ctx := context.Background()

	sub, _, err := s.service.Create(ctx, validCreate())
	s.Require().NoError(err)

	s.Run("advances to processing", func() {
		updated, err := s.service.SetStatus(ctx, sub.ID, models.StatusProcessing)
		s.Require().NoError(err)
		s.Equal(models.StatusProcessing, updated.Status)
	})

	s.Run("no transition graph is enforced", func() {
		// Administrative override can move backwards; the permissiveness is
		// intentional.
		updated, err := s.service.SetStatus(ctx, sub.ID, models.StatusInProgress)
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, updated.Status)
	})

	s.Run("rejects unknown status values", func() {
		_, err := s.service.SetStatus(ctx, sub.ID, "ARCHIVED")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown submission", func() {
		_, err := s.service.SetStatus(ctx, id.NewSubmissionID(), models.StatusCompleted)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
