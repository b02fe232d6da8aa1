package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"spoils/internal/resolver"
	"spoils/internal/store"
	"spoils/pkg/api"
)

// EnqueueFetchProduct handles POST /api/jobs/fetch-product.
// A duplicate submission while an equivalent job is still in flight is
// collapsed onto it and reported as success.
func (h *Handlers) EnqueueFetchProduct(w http.ResponseWriter, r *http.Request) {
	var req api.FetchProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Barcode == "" {
		h.httpError(w, "Barcode is required", http.StatusBadRequest)
		return
	}

	h.enqueue(w, r, resolver.TaskFetchProduct, resolver.FetchProductPayload{Barcode: req.Barcode})
}

// EnqueueAnalyzeIngredients handles POST /api/jobs/analyze-ingredients.
func (h *Handlers) EnqueueAnalyzeIngredients(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeIngredientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID <= 0 {
		h.httpError(w, "Product id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.enqueue(w, r, resolver.TaskAnalyzeIngredients, resolver.AnalyzeIngredientsPayload{ProductID: req.ProductID})
}

// EnqueueNotification handles POST /api/jobs/notify.
func (h *Handlers) EnqueueNotification(w http.ResponseWriter, r *http.Request) {
	var req api.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		h.httpError(w, "Message is required", http.StatusBadRequest)
		return
	}

	h.enqueue(w, r, resolver.TaskSendNotification, resolver.NotifyPayload{
		UserID:           req.UserID,
		NotificationType: req.NotificationType,
		Message:          req.Message,
	})
}

// GetJob handles GET /api/jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.JobResponse{
		ID:         job.ID,
		TaskType:   job.TaskType,
		Status:     job.Status.String(),
		Attempts:   job.Attempts,
		MaxRetries: job.MaxRetries,
		NotBefore:  job.NotBefore,
		LastError:  job.LastError,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	})
}

// enqueue submits one job and writes the standard response. Enqueue is
// fire-and-forget: the caller is never blocked on job completion.
func (h *Handlers) enqueue(w http.ResponseWriter, r *http.Request, taskType string, payload any) {
	id, created, err := h.queue.Enqueue(r.Context(), taskType, payload)
	if err != nil {
		h.log.Error("enqueue failed", "task_type", taskType, "error", err)
		h.httpError(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.EnqueueResponse{
		JobID:     id,
		Duplicate: !created,
	})
}
