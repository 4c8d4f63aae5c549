package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	docmodels "intake/internal/document/models"
	"intake/internal/upload/service"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
)

// =============================================================================
// Upload Handler Test Suite
// =============================================================================
// These tests drive the multipart parsing and the status mapping; the
// orchestrator itself is stubbed so the budget errors can be forced directly.

type stubOrchestrator struct {
	err  error
	last service.Request
}

func (s *stubOrchestrator) Upload(_ context.Context, req service.Request) (*docmodels.Document, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &docmodels.Document{
		ID:           id.NewDocumentID(),
		SubmissionID: req.SubmissionID,
		DocType:      req.DocType,
		OriginalName: req.OriginalName,
		SizeBytes:    int64(len(req.Data)),
		MIMEType:     req.MIMEType,
	}, nil
}

type UploadHandlerSuite struct {
	suite.Suite
	router       http.Handler
	orchestrator *stubOrchestrator
	sid          id.SubmissionID
}

func TestUploadHandlerSuite(t *testing.T) {
	suite.Run(t, new(UploadHandlerSuite))
}

func (s *UploadHandlerSuite) SetupTest() {
	s.orchestrator = &stubOrchestrator{}
	s.sid = id.NewSubmissionID()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(s.orchestrator, logger).Register(r)
	s.router = r
}

func (s *UploadHandlerSuite) multipartRequest(docType, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if docType != "" {
		s.Require().NoError(w.WriteField("doc_type", docType))
	}
	if filename != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		s.Require().NoError(err)
		_, err = io.Copy(part, bytes.NewReader(data))
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/submissions/%s/documents", s.sid), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (s *UploadHandlerSuite) TestUpload() {
	req := s.multipartRequest("passport", "passport.pdf", "application/pdf", []byte("%PDF-1.7 fake"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusCreated, rec.Code)
	var resp UploadResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("passport", resp.DocType)
	s.Equal("passport.pdf", resp.OriginalName)

	s.Equal(s.sid, s.orchestrator.last.SubmissionID)
	s.Equal("application/pdf", s.orchestrator.last.MIMEType)
	s.Equal([]byte("%PDF-1.7 fake"), s.orchestrator.last.Data)
}

func (s *UploadHandlerSuite) TestUpload_MissingDocType() {
	req := s.multipartRequest("", "passport.pdf", "application/pdf", []byte("x"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UploadHandlerSuite) TestUpload_MissingFile() {
	req := s.multipartRequest("passport", "", "", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UploadHandlerSuite) TestUpload_NotMultipart() {
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/submissions/%s/documents", s.sid), bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UploadHandlerSuite) TestUpload_MalformedSubmissionID() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.Close())
	req := httptest.NewRequest(http.MethodPost, "/submissions/not-a-uuid/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UploadHandlerSuite) TestUpload_AttemptLimitMapsTo429() {
	s.orchestrator.err = &service.AttemptLimitError{Attempts: 3, Limit: 3}

	req := s.multipartRequest("passport", "passport.pdf", "application/pdf", []byte("x"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusTooManyRequests, rec.Code)
	var body map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal("upload_attempts_exhausted", body["error"])
	s.EqualValues(3, body["attempts"])
}

func (s *UploadHandlerSuite) TestUpload_ValidationErrorMapsTo400() {
	s.orchestrator.err = dErrors.New(dErrors.CodeBadRequest, "only application/pdf uploads are accepted")

	req := s.multipartRequest("passport", "passport.txt", "text/plain", []byte("hi"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UploadHandlerSuite) TestUpload_StorageUnavailableMapsTo503() {
	s.orchestrator.err = dErrors.Wrap(errors.New("disk full"), dErrors.CodeUnavailable, "document storage unavailable")

	req := s.multipartRequest("passport", "passport.pdf", "application/pdf", []byte("x"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}
