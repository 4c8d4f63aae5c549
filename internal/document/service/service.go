// Package service implements the document store: validation, collision
// resistant naming, the primary/fallback write path, and replace semantics for
// re-uploads.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"time"

	"intake/internal/document/blob"
	"intake/internal/document/models"
	"intake/internal/document/store"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/circuit"
	"intake/pkg/requestcontext"
)

// AllowedMIMEType is the single accepted upload type.
const AllowedMIMEType = "application/pdf"

// MaxSizeBytes caps uploads at 10 MiB.
const MaxSizeBytes = 10 << 20

// PutRequest carries one upload. Dept and StudentID come from the owning
// submission and only influence storage paths.
type PutRequest struct {
	SubmissionID id.SubmissionID
	Dept         id.Dept
	StudentID    string
	DocType      string
	Data         []byte
	OriginalName string
	MIMEType     string
}

type Service struct {
	docs     store.DocumentStore
	primary  blob.ObjectStore // nil disables the primary entirely
	fallback blob.ObjectStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPrimary sets the remote object store. Without a primary every write
// lands on the fallback and is marked as such, so operators can migrate the
// records later.
func WithPrimary(primary blob.ObjectStore) Option {
	return func(s *Service) {
		s.primary = primary
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func New(docs store.DocumentStore, fallback blob.ObjectStore, opts ...Option) (*Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if fallback == nil {
		return nil, fmt.Errorf("fallback store is required")
	}

	svc := &Service{
		docs:     docs,
		fallback: fallback,
		breaker:  circuit.New("object-store"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Put validates the upload, writes the bytes to the primary store (falling
// back to the local durable store on any primary failure), and replaces the
// metadata row for (submission, doc_type) atomically.
func (s *Service) Put(ctx context.Context, req PutRequest) (*models.Document, error) {
	if err := validatePut(req); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	filename, err := storageFilename(req.DocType, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate filename")
	}

	stored, fellBack, err := s.writeBytes(ctx, req, filename, now)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:           id.NewDocumentID(),
		SubmissionID: req.SubmissionID,
		DocType:      req.DocType,
		OriginalName: req.OriginalName,
		StoragePath:  stored.Path,
		SizeBytes:    int64(len(req.Data)),
		MIMEType:     req.MIMEType,
		Fallback:     fellBack,
		CreatedAt:    now,
	}

	replaced, err := s.docs.Replace(ctx, doc)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document")
	}
	if replaced != nil {
		// Only the metadata row is replaced; the old bytes stay at their
		// previous path. Logged so the orphans can be reclaimed out of band.
		s.logger.InfoContext(ctx, "document replaced, previous bytes orphaned",
			"submission_id", req.SubmissionID.String(),
			"doc_type", req.DocType,
			"orphaned_path", replaced.StoragePath,
		)
	}
	return doc, nil
}

// ListBySubmission returns the documents currently registered for a submission.
func (s *Service) ListBySubmission(ctx context.Context, sid id.SubmissionID) ([]models.Document, error) {
	docs, err := s.docs.ListBySubmission(ctx, sid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// ListDocTypes implements the submit gate's view of uploaded documents.
func (s *Service) ListDocTypes(ctx context.Context, sid id.SubmissionID) ([]string, error) {
	return s.docs.ListDocTypes(ctx, sid)
}

// writeBytes attempts the primary store, then the fallback. The request fully
// succeeds or fully fails; there is no deferred retry queue.
func (s *Service) writeBytes(ctx context.Context, req PutRequest, filename string, now time.Time) (blob.StoredObject, bool, error) {
	if s.primary != nil && s.breaker.Allow() {
		stored, err := s.primary.Put(ctx, primaryPath(req, filename), req.Data)
		if err == nil {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "object store circuit closed", "breaker", s.breaker.Name())
			}
			return stored, false, nil
		}
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "object store circuit opened", "breaker", s.breaker.Name())
		}
		s.logger.WarnContext(ctx, "primary store write failed, falling back",
			"submission_id", req.SubmissionID.String(),
			"doc_type", req.DocType,
			"error", err.Error(),
		)
	}

	stored, err := s.fallback.Put(ctx, fallbackPath(req, filename, now), req.Data)
	if err != nil {
		return blob.StoredObject{}, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "document storage unavailable")
	}
	return stored, true, nil
}

func validatePut(req PutRequest) error {
	if req.SubmissionID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "submission_id is required")
	}
	if req.DocType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "doc_type is required")
	}
	if req.MIMEType != AllowedMIMEType {
		return dErrors.Newf(dErrors.CodeBadRequest, "only %s uploads are accepted", AllowedMIMEType)
	}
	if len(req.Data) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "file is empty")
	}
	if len(req.Data) > MaxSizeBytes {
		return dErrors.Newf(dErrors.CodeBadRequest, "file exceeds the %d MiB limit", MaxSizeBytes>>20)
	}
	return nil
}

// storageFilename builds a collision-resistant name from the doc type, a
// timestamp, and a random suffix.
func storageFilename(docType string, now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s.pdf", docType, now.Format("20060102T150405"), hex.EncodeToString(suffix)), nil
}

// primaryPath derives the remote path from department and student identity.
func primaryPath(req PutRequest, filename string) string {
	student := req.StudentID
	if student == "" {
		student = req.SubmissionID.String()
	}
	return path.Join(string(req.Dept), student, filename)
}

// fallbackPath is deterministic: dept/year/student_id/filename.
func fallbackPath(req PutRequest, filename string, now time.Time) string {
	student := req.StudentID
	if student == "" {
		student = req.SubmissionID.String()
	}
	return path.Join(string(req.Dept), strconv.Itoa(now.Year()), student, filename)
}
