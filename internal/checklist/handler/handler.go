// Package handler exposes checklist resolution over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"intake/internal/checklist/models"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// Service defines the interface for checklist resolution.
type Service interface {
	Resolve(ctx context.Context, q models.Query) ([]models.ChecklistItem, error)
}

// Handler wires checklist endpoints to the rule engine.
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

// Register mounts checklist endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checklist/resolve", h.HandleResolve)
}

// HandleResolve handles POST /checklist/resolve requests.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	items, err := h.service.Resolve(ctx, req.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "checklist resolution failed",
			"request_id", requestID,
			"dept", req.Dept,
			"programme", req.Programme,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "checklist resolved",
		"request_id", requestID,
		"dept", req.Dept,
		"programme", req.Programme,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromItems(items))
}
