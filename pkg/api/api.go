// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// FetchProductRequest is the request body for enqueuing a product fetch.
type FetchProductRequest struct {
	Barcode string `json:"barcode"`
}

// AnalyzeIngredientsRequest is the request body for enqueuing an
// ingredient analysis of a cached product.
type AnalyzeIngredientsRequest struct {
	ProductID int64 `json:"product_id"`
}

// NotifyRequest is the request body for enqueuing a notification.
type NotifyRequest struct {
	UserID           int64  `json:"user_id"`
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
}

// EnqueueResponse is the response body after submitting a job.
// Duplicate is true when an equivalent job was already queued and the
// submission was collapsed onto it; JobID then refers to that job.
type EnqueueResponse struct {
	JobID     int64 `json:"job_id"`
	Duplicate bool  `json:"duplicate,omitempty"`
}

// ResolveIngredientRequest is the request body for resolving an
// ingredient by name.
type ResolveIngredientRequest struct {
	Name string `json:"name"`
}

// ResolveIngredientResponse reports the outcome of a resolution attempt.
// Either the ingredient already exists (IngredientID set) or a
// create_ingredient job was enqueued (JobID set, Enqueued true).
type ResolveIngredientResponse struct {
	IngredientID int64 `json:"ingredient_id,omitempty"`
	JobID        int64 `json:"job_id,omitempty"`
	Enqueued     bool  `json:"enqueued"`
}

// JobResponse represents a stored job in API responses.
type JobResponse struct {
	ID         int64      `json:"id"`
	TaskType   string     `json:"task_type"`
	Status     string     `json:"status"`
	Attempts   int        `json:"attempts"`
	MaxRetries int        `json:"max_retries"`
	NotBefore  time.Time  `json:"not_before"`
	LastError  *string    `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Branded           bool     `json:"branded"`
	ProteinPerGram    *float64 `json:"protein_per_gram,omitempty"`
	CarbsPerGram      *float64 `json:"carbs_per_gram,omitempty"`
	FatPerGram        *float64 `json:"fat_per_gram,omitempty"`
	FiberPerGram      *float64 `json:"fiber_per_gram,omitempty"`
	SubIngredients    []int64  `json:"sub_ingredients,omitempty"`
	ParentIngredients []int64  `json:"parent_ingredients,omitempty"`
}

// ProductResponse represents a cached product in API responses.
type ProductResponse struct {
	ID              int64   `json:"id"`
	Barcode         string  `json:"barcode"`
	ProductName     *string `json:"product_name,omitempty"`
	Brands          *string `json:"brands,omitempty"`
	Categories      *string `json:"categories,omitempty"`
	Quantity        *string `json:"quantity,omitempty"`
	ImageURL        *string `json:"image_url,omitempty"`
	NutriscoreGrade *string `json:"nutriscore_grade,omitempty"`
	NovaGroup       *int    `json:"nova_group,omitempty"`
	EcoscoreGrade   *string `json:"ecoscore_grade,omitempty"`
	IngredientsText *string `json:"ingredients_text,omitempty"`
	Allergens       *string `json:"allergens,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
