package handlers

import (
	"errors"
	"net/http"

	"spoils/internal/resolver"
	"spoils/internal/store"
	"spoils/pkg/api"
)

// GetProduct handles GET /api/products/{barcode} as a read-through
// cache: a hit answers from the database, a miss enqueues the fetch
// and tells the caller to come back.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")

	product, err := h.store.GetProductByBarcode(r.Context(), barcode)
	if err == nil {
		h.respondJson(w, http.StatusOK, api.ProductResponse{
			ID:              product.ID,
			Barcode:         product.Barcode,
			ProductName:     product.ProductName,
			Brands:          product.Brands,
			Categories:      product.Categories,
			Quantity:        product.Quantity,
			ImageURL:        product.ImageURL,
			NutriscoreGrade: product.NutriscoreGrade,
			NovaGroup:       product.NovaGroup,
			EcoscoreGrade:   product.EcoscoreGrade,
			IngredientsText: product.IngredientsText,
			Allergens:       product.Allergens,
		})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	id, _, err := h.queue.Enqueue(r.Context(), resolver.TaskFetchProduct, resolver.FetchProductPayload{Barcode: barcode})
	if err != nil {
		h.log.Error("enqueue failed", "task_type", resolver.TaskFetchProduct, "error", err)
		h.httpError(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusAccepted, api.EnqueueResponse{JobID: id})
}
