// Package handler exposes multipart document upload over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	docmodels "intake/internal/document/models"
	docservice "intake/internal/document/service"
	"intake/internal/upload/service"
	id "intake/pkg/domain"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing; the
// service enforces the actual document size limit.
const maxMultipartMemory = 16 << 20

// Service defines the interface for upload orchestration.
type Service interface {
	Upload(ctx context.Context, req service.Request) (*docmodels.Document, error)
}

// Handler wires the multipart upload endpoint to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the upload endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions/{id}/documents", h.HandleUpload)
}

// HandleUpload handles POST /submissions/{id}/documents requests. The body is
// multipart form data with a doc_type field and a file part.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sid, err := id.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body must be multipart form data"))
		return
	}

	docType := strings.TrimSpace(r.FormValue("doc_type"))
	if docType == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "doc_type field is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, docservice.MaxSizeBytes+1))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file part"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	doc, err := h.service.Upload(ctx, service.Request{
		SubmissionID: sid,
		DocType:      docType,
		Data:         data,
		OriginalName: header.Filename,
		MIMEType:     mimeType,
	})
	if err != nil {
		var limitErr *service.AttemptLimitError
		if errors.As(err, &limitErr) {
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":             "upload_attempts_exhausted",
				"error_description": limitErr.Error(),
				"attempts":          limitErr.Attempts,
				"max_attempts":      limitErr.Limit,
			})
			return
		}
		h.logger.ErrorContext(ctx, "document upload failed",
			"request_id", requestID,
			"submission_id", sid.String(),
			"doc_type", docType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document uploaded",
		"request_id", requestID,
		"submission_id", sid.String(),
		"doc_type", docType,
		"size_bytes", doc.SizeBytes,
		"fallback", doc.Fallback,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromDocument(doc))
}
