// Package httpapi assembles the public router: middleware chain, domain
// handlers, health, and metrics.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intake/internal/platform/metrics"
	"intake/internal/platform/middleware"
	"intake/pkg/platform/httputil"
)

// Registerer is implemented by domain handler packages that mount their own
// routes.
type Registerer interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable. A nil map
// entry is skipped so optional dependencies never fail the probe.
type HealthChecker func() error

// NewRouter builds the full middleware chain and mounts every domain handler.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, health map[string]HealthChecker, handlers ...Registerer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(60 * time.Second))
	if m != nil {
		r.Use(middleware.Latency(m))
	}

	r.Get("/healthz", handleHealth(health))
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
