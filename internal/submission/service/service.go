// Package service implements the submission lifecycle manager: create with
// dedup, the checklist-gated submit transition, reference allocation, and the
// administrative status override.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"

	checklistmodels "intake/internal/checklist/models"
	"intake/internal/notify"
	"intake/internal/submission/metrics"
	"intake/internal/submission/models"
	"intake/internal/submission/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
	pstrings "intake/pkg/platform/strings"
	"intake/pkg/requestcontext"
)

// Checklist is the rule engine view the submit gate depends on. The same
// Resolve backs the student-facing checklist endpoint; the gate never
// duplicates rule logic.
type Checklist interface {
	ResolveRequired(ctx context.Context, q checklistmodels.Query) ([]string, error)
}

// DocumentCatalog lists the doc types currently uploaded for a submission.
type DocumentCatalog interface {
	ListDocTypes(ctx context.Context, sid id.SubmissionID) ([]string, error)
}

type Service struct {
	store      store.SubmissionStore
	checklist  Checklist
	docs       DocumentCatalog
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// notifyTimeout bounds the detached notification dispatch.
	notifyTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithDispatcher(dispatcher notify.Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = dispatcher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(st store.SubmissionStore, checklist Checklist, docs DocumentCatalog, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if checklist == nil {
		return nil, fmt.Errorf("checklist service is required")
	}
	if docs == nil {
		return nil, fmt.Errorf("document catalog is required")
	}

	svc := &Service{
		store:         st,
		checklist:     checklist,
		docs:          docs,
		logger:        slog.Default(),
		notifyTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create validates the student-info fields and creates a submission in the
// department's initial state. A non-empty student_id that already has a
// submission in the same department returns the existing record instead; the
// second return reports whether a new record was created.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Submission, bool, error) {
	if err := validateCreate(req); err != nil {
		return nil, false, err
	}

	if req.StudentID != "" {
		existing, err := s.store.FindByStudentAndDept(ctx, req.StudentID, req.Dept)
		if err == nil {
			if s.metrics != nil {
				s.metrics.IncrementDeduped()
			}
			return existing, false, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up existing submission")
		}
	}

	now := requestcontext.Now(ctx).UTC()
	sub := &models.Submission{
		ID:           id.NewSubmissionID(),
		StudentID:    req.StudentID,
		Email:        req.Email,
		FullName:     req.FullName,
		DateOfBirth:  req.DateOfBirth,
		Programme:    req.Programme,
		IntakeTerm:   req.IntakeTerm,
		Campus:       req.Campus,
		Nationality:  req.Nationality,
		FundingType:  req.FundingType,
		Dept:         req.Dept,
		Status:       models.InitialStatus(req.Dept),
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return sub, true, nil
}

// Get returns one submission by ID.
func (s *Service) Get(ctx context.Context, sid id.SubmissionID) (*models.Submission, error) {
	sub, err := s.store.FindByID(ctx, sid)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	return sub, nil
}

// Submit gates the IN_PROGRESS → SUBMITTED transition on checklist
// completeness, assigns the reference exactly once, and triggers best-effort
// confirmation notifications. A notification failure never changes the
// reported outcome.
func (s *Service) Submit(ctx context.Context, sid id.SubmissionID) (*models.Submission, error) {
	sub, err := s.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	required, err := s.checklist.ResolveRequired(ctx, checklistmodels.Query{
		Programme:   sub.Programme,
		IntakeTerm:  sub.IntakeTerm,
		Campus:      sub.Campus,
		Dept:        sub.Dept,
		FundingType: sub.FundingType,
		Nationality: sub.Nationality,
	})
	if err != nil {
		return nil, err
	}

	uploaded, err := s.docs.ListDocTypes(ctx, sid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list uploaded documents")
	}
	if missing := missingDocTypes(required, uploaded); len(missing) > 0 {
		if s.metrics != nil {
			s.metrics.IncrementIncompleteRejections()
		}
		return nil, &IncompleteSubmissionError{Missing: missing}
	}

	updated, err := s.advanceToSubmitted(ctx, sub)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}

	s.dispatchSubmitNotifications(ctx, updated)
	return updated, nil
}

// advanceToSubmitted assigns a reference (if not already set) and moves the
// submission to SUBMITTED under the store's row-scoped transaction. Reference
// collisions regenerate and retry up to maxReferenceAttempts.
func (s *Service) advanceToSubmitted(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		candidate := ""
		if sub.Reference == "" {
			ref, err := GenerateReference(sub.Dept, requestcontext.Now(ctx))
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reference")
			}
			taken, err := s.store.ReferenceExists(ctx, ref)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check reference")
			}
			if taken {
				if s.metrics != nil {
					s.metrics.IncrementReferenceRetries()
				}
				continue
			}
			candidate = ref
		}

		updated, err := s.store.UpdateAtomic(ctx, sub.ID, func(cur *models.Submission) error {
			if cur.Reference == "" {
				cur.Reference = candidate
			}
			cur.Status = models.StatusSubmitted
			return nil
		})
		if errors.Is(err, sentinel.ErrConflict) {
			// Another submission claimed the reference between the existence
			// check and the write. Regenerate and try again.
			if s.metrics != nil {
				s.metrics.IncrementReferenceRetries()
			}
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update submission")
		}
		return updated, nil
	}
	return nil, &ReferenceAllocationError{Attempts: maxReferenceAttempts}
}

// SetStatus is the administrative override. Any valid status is accepted; no
// transition graph is enforced. That permissiveness is deliberate and
// documented rather than guarded.
func (s *Service) SetStatus(ctx context.Context, sid id.SubmissionID, status models.Status) (*models.Submission, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", status)
	}

	updated, err := s.store.UpdateAtomic(ctx, sid, func(cur *models.Submission) error {
		cur.Status = status
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
	}
	return updated, nil
}

// dispatchSubmitNotifications fans out the confirmation and department
// notifications detached from the request. Failures are logged and swallowed;
// transactional success is not coupled to courtesy-notification success.
func (s *Service) dispatchSubmitNotifications(ctx context.Context, sub *models.Submission) {
	if s.dispatcher == nil {
		return
	}

	requestID := requestcontext.RequestID(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		nctx, cancel := context.WithTimeout(detached, s.notifyTimeout)
		defer cancel()

		payload := notify.Payload{
			"submission_id": sub.ID.String(),
			"reference":     sub.Reference,
			"email":         sub.Email,
			"full_name":     sub.FullName,
			"programme":     sub.Programme,
			"dept":          string(sub.Dept),
		}
		g := new(errgroup.Group)
		for _, kind := range []notify.Kind{notify.KindSubmissionConfirmation, notify.KindDepartmentNotification} {
			g.Go(func() error {
				if err := s.dispatcher.Send(nctx, kind, payload); err != nil {
					s.logger.Warn("notification dispatch failed",
						"request_id", requestID,
						"kind", string(kind),
						"submission_id", sub.ID.String(),
						"error", err.Error(),
					)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func missingDocTypes(required, uploaded []string) []string {
	have := make(map[string]bool, len(uploaded))
	for _, dt := range pstrings.DedupeAndTrim(uploaded) {
		have[dt] = true
	}
	var missing []string
	for _, dt := range pstrings.DedupeAndTrim(required) {
		if !have[dt] {
			missing = append(missing, dt)
		}
	}
	return missing
}

func validateCreate(req models.CreateRequest) error {
	if !req.Dept.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown department %q", req.Dept)
	}
	if !req.FundingType.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown funding type %q", req.FundingType)
	}
	if req.Email == "" || !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "a valid email is required")
	}
	if req.FullName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "full_name is required")
	}
	if req.DateOfBirth == "" {
		return dErrors.New(dErrors.CodeBadRequest, "date_of_birth is required")
	}
	if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	if req.Programme == "" {
		return dErrors.New(dErrors.CodeBadRequest, "programme is required")
	}
	if req.IntakeTerm == "" {
		return dErrors.New(dErrors.CodeBadRequest, "intake_term is required")
	}
	if req.Campus == "" {
		return dErrors.New(dErrors.CodeBadRequest, "campus is required")
	}
	if req.Dept == id.DeptRegistry {
		if req.AcademicYear == "" {
			return dErrors.New(dErrors.CodeBadRequest, "academic_year is required for registry submissions")
		}
		if req.Semester == "" {
			return dErrors.New(dErrors.CodeBadRequest, "semester is required for registry submissions")
		}
	}
	return nil
}
