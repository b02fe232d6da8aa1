// Package server contains the HTTP API in front of the job engine.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"spoils/internal/server/handlers"
	"spoils/internal/server/middleware"
)

// Server is the HTTP server for the public API.
type Server struct {
	httpServer *http.Server
}

// Options carries the optional pieces of the server wiring.
type Options struct {
	// APIKey, when non-empty, is required as a bearer token on the
	// submission endpoints. Empty disables authentication.
	APIKey string

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

// New creates the API server. Read endpoints are open; submission
// endpoints sit behind the API key and a per-client rate limit.
func New(addr string, h *handlers.Handlers, log *slog.Logger, opts Options) *Server {
	requestID := middleware.RequestID(log)
	limit := middleware.RateLimit(10, 20)
	authMW := middleware.APIKeyAuth(opts.APIKey)
	submit := func(fn http.HandlerFunc) http.Handler {
		return authMW(limit(fn))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	mux.Handle("POST /api/jobs/fetch-product", submit(h.EnqueueFetchProduct))
	mux.Handle("POST /api/jobs/analyze-ingredients", submit(h.EnqueueAnalyzeIngredients))
	mux.Handle("POST /api/jobs/notify", submit(h.EnqueueNotification))
	mux.Handle("POST /api/ingredients/resolve", submit(h.ResolveIngredient))

	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /api/ingredients/{name}", h.GetIngredient)
	mux.HandleFunc("GET /api/products/{barcode}", h.GetProduct)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      requestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
