// Package handler exposes the submission lifecycle over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	docmodels "intake/internal/document/models"
	"intake/internal/submission/models"
	"intake/internal/submission/service"
	id "intake/pkg/domain"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// Service defines the interface for submission lifecycle operations.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Submission, bool, error)
	Get(ctx context.Context, sid id.SubmissionID) (*models.Submission, error)
	Submit(ctx context.Context, sid id.SubmissionID) (*models.Submission, error)
	SetStatus(ctx context.Context, sid id.SubmissionID, status models.Status) (*models.Submission, error)
}

// Documents is the read view used by GET /submissions/{id}/documents.
type Documents interface {
	ListBySubmission(ctx context.Context, sid id.SubmissionID) ([]docmodels.Document, error)
}

// Handler wires submission endpoints to the lifecycle manager.
type Handler struct {
	service   Service
	documents Documents
	logger    *slog.Logger
}

func New(service Service, documents Documents, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		documents: documents,
		logger:    logger,
	}
}

// Register mounts submission endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions", h.HandleCreate)
	r.Get("/submissions/{id}", h.HandleGet)
	r.Get("/submissions/{id}/documents", h.HandleListDocuments)
	r.Post("/submissions/{id}/submit", h.HandleSubmit)
	r.Put("/submissions/{id}/status", h.HandleSetStatus)
}

// HandleCreate handles POST /submissions requests. A dedup hit answers with
// the existing record and 200 instead of 201.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, created, err := h.service.Create(ctx, req.Domain())
	if err != nil {
		h.logger.ErrorContext(ctx, "submission create failed",
			"request_id", requestID,
			"dept", req.Dept,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.logger.InfoContext(ctx, "submission created",
		"request_id", requestID,
		"submission_id", sub.ID.String(),
		"dept", string(sub.Dept),
		"deduped", !created,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, status, FromSubmission(sub))
}

// HandleGet handles GET /submissions/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid, err := id.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Get(ctx, sid)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleListDocuments handles GET /submissions/{id}/documents requests.
func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid, err := id.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.service.Get(ctx, sid); err != nil {
		httputil.WriteError(w, err)
		return
	}

	docs, err := h.documents.ListBySubmission(ctx, sid)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocuments(docs))
}

// HandleSubmit handles POST /submissions/{id}/submit requests. An incomplete
// submission answers 422 with the exact missing doc types.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sid, err := id.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Submit(ctx, sid)
	if err != nil {
		var incomplete *service.IncompleteSubmissionError
		if errors.As(err, &incomplete) {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, IncompleteResponse{
				Error:            "incomplete_submission",
				ErrorDescription: incomplete.Error(),
				Missing:          incomplete.Missing,
			})
			return
		}
		h.logger.ErrorContext(ctx, "submission submit failed",
			"request_id", requestID,
			"submission_id", sid.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission submitted",
		"request_id", requestID,
		"submission_id", sub.ID.String(),
		"reference", sub.Reference,
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleSetStatus handles PUT /submissions/{id}/status requests.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sid, err := id.ParseSubmissionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.SetStatus(ctx, sid, models.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission status overridden",
		"request_id", requestID,
		"submission_id", sub.ID.String(),
		"status", string(sub.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}
