package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"spoils/internal/store"
	"spoils/pkg/api"
)

// ResolveIngredient handles POST /api/ingredients/resolve.
// An existing ingredient answers immediately; a missing one gets a
// creation job and the caller polls GET /api/ingredients/{name}.
func (h *Handlers) ResolveIngredient(w http.ResponseWriter, r *http.Request) {
	var req api.ResolveIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}

	ing, jobID, err := h.resolver.FindOrEnqueueCreation(r.Context(), req.Name)
	if err != nil {
		h.log.Error("ingredient resolution failed", "name", req.Name, "error", err)
		h.httpError(w, "Failed to resolve ingredient", http.StatusInternalServerError)
		return
	}

	if ing != nil {
		h.respondJson(w, http.StatusOK, api.ResolveIngredientResponse{IngredientID: ing.ID})
		return
	}
	h.respondJson(w, http.StatusAccepted, api.ResolveIngredientResponse{JobID: jobID, Enqueued: true})
}

// GetIngredient handles GET /api/ingredients/{name}.
func (h *Handlers) GetIngredient(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ing, err := h.store.FindIngredientByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Ingredient not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.IngredientResponse{
		ID:                ing.ID,
		Name:              ing.Name,
		Branded:           ing.Branded,
		ProteinPerGram:    ing.ProteinPerGram,
		CarbsPerGram:      ing.CarbsPerGram,
		FatPerGram:        ing.FatPerGram,
		FiberPerGram:      ing.FiberPerGram,
		SubIngredients:    ing.SubIngredients,
		ParentIngredients: ing.ParentIngredients,
	})
}
