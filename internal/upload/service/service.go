// Package service orchestrates document uploads: the per-document attempt
// budget, the store call, and the outcome notifications.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	docmodels "intake/internal/document/models"
	docservice "intake/internal/document/service"
	"intake/internal/notify"
	"intake/internal/submission/models"
	"intake/internal/upload/metrics"
	"intake/internal/upload/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/requestcontext"
)

// DefaultMaxAttempts is the failed-attempt budget per (submission, doc type).
const DefaultMaxAttempts = 3

// Documents is the document store write path.
type Documents interface {
	Put(ctx context.Context, req docservice.PutRequest) (*docmodels.Document, error)
}

// Submissions resolves the owning submission for path derivation.
type Submissions interface {
	Get(ctx context.Context, sid id.SubmissionID) (*models.Submission, error)
}

type Service struct {
	documents   Documents
	submissions Submissions
	attempts    store.AttemptStore
	dispatcher  notify.Dispatcher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxAttempts int

	notifyTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithDispatcher(d notify.Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(documents Documents, submissions Submissions, attempts store.AttemptStore, opts ...Option) (*Service, error) {
	if documents == nil {
		return nil, fmt.Errorf("document service is required")
	}
	if submissions == nil {
		return nil, fmt.Errorf("submission service is required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt store is required")
	}

	svc := &Service{
		documents:     documents,
		submissions:   submissions,
		attempts:      attempts,
		logger:        slog.Default(),
		maxAttempts:   DefaultMaxAttempts,
		notifyTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Request is one upload against an existing submission.
type Request struct {
	SubmissionID id.SubmissionID
	DocType      string
	Data         []byte
	OriginalName string
	MIMEType     string
}

// Upload checks the attempt budget, stores the document, and dispatches the
// outcome notification. The budget is checked before any storage work; a
// request that already burned its attempts never reaches the stores, though
// the rejection still sends the failure notification. Failures after the
// budget check increment the counter so the next attempt sees it.
func (s *Service) Upload(ctx context.Context, req Request) (*docmodels.Document, error) {
	sub, err := s.submissions.Get(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}

	failed, err := s.attempts.Get(ctx, req.SubmissionID, req.DocType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read attempt counter")
	}
	if failed >= s.maxAttempts {
		if s.metrics != nil {
			s.metrics.UploadsCappedOut.Inc()
		}
		limitErr := &AttemptLimitError{Attempts: failed, Limit: s.maxAttempts}
		s.dispatch(ctx, notify.KindUploadFailure, notify.Payload{
			"submission_id": sub.ID.String(),
			"email":         sub.Email,
			"doc_type":      req.DocType,
			"original_name": req.OriginalName,
			"error":         limitErr.Error(),
			"attempt":       failed,
			"max_attempts":  s.maxAttempts,
		})
		return nil, limitErr
	}

	doc, err := s.documents.Put(ctx, docservice.PutRequest{
		SubmissionID: req.SubmissionID,
		Dept:         sub.Dept,
		StudentID:    sub.StudentID,
		DocType:      req.DocType,
		Data:         req.Data,
		OriginalName: req.OriginalName,
		MIMEType:     req.MIMEType,
	})
	if err != nil {
		s.recordFailure(ctx, sub, req, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.UploadsAccepted.Inc()
		if doc.Fallback {
			s.metrics.FallbackWrites.Inc()
		}
	}
	s.dispatch(ctx, notify.KindUploadConfirmation, notify.Payload{
		"submission_id": sub.ID.String(),
		"email":         sub.Email,
		"doc_type":      req.DocType,
		"original_name": req.OriginalName,
	})
	return doc, nil
}

// recordFailure bumps the server-side counter and notifies the student. The
// counter is best effort too; a broken counter store must not mask the
// original upload error.
func (s *Service) recordFailure(ctx context.Context, sub *models.Submission, req Request, cause error) {
	if s.metrics != nil {
		s.metrics.UploadsFailed.Inc()
	}

	attempt, err := s.attempts.Increment(ctx, req.SubmissionID, req.DocType)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to increment attempt counter",
			"submission_id", req.SubmissionID.String(),
			"doc_type", req.DocType,
			"error", err.Error(),
		)
		attempt = 0
	}

	s.dispatch(ctx, notify.KindUploadFailure, notify.Payload{
		"submission_id": sub.ID.String(),
		"email":         sub.Email,
		"doc_type":      req.DocType,
		"original_name": req.OriginalName,
		"error":         cause.Error(),
		"attempt":       attempt,
		"max_attempts":  s.maxAttempts,
	})
}

// dispatch sends one notification detached from the request lifecycle.
func (s *Service) dispatch(ctx context.Context, kind notify.Kind, payload notify.Payload) {
	if s.dispatcher == nil {
		return
	}

	requestID := requestcontext.RequestID(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		nctx, cancel := context.WithTimeout(detached, s.notifyTimeout)
		defer cancel()

		if err := s.dispatcher.Send(nctx, kind, payload); err != nil {
			s.logger.Warn("notification dispatch failed",
				"request_id", requestID,
				"kind", string(kind),
				"error", err.Error(),
			)
		}
	}()
}
