// Package handlers contains the HTTP handlers for the public API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"spoils/internal/jobs"
	"spoils/internal/resolver"
	"spoils/internal/store"
	"spoils/pkg/api"
)

// StoreFactory combines the store interfaces the API needs.
type StoreFactory interface {
	Ping(ctx context.Context) error
	store.JobStore
	store.IngredientStore
	store.ProductStore
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    StoreFactory
	queue    jobs.Enqueuer
	resolver *resolver.Resolver
	log      *slog.Logger
}

// New creates a new Handlers instance.
func New(s StoreFactory, queue jobs.Enqueuer, res *resolver.Resolver, log *slog.Logger) *Handlers {
	return &Handlers{store: s, queue: queue, resolver: res, log: log}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
