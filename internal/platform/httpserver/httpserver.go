// Package httpserver builds the intake API server. Request-level timeouts
// live in the router middleware; only header reads and idle keep-alives are
// bounded here.
package httpserver

import (
	"net/http"
	"time"
)

// New returns the configured server. Shutdown is the caller's job.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
