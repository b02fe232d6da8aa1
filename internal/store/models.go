// Package store contains the database layer for spoils.
package store

import (
	"encoding/json"
	"time"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusLeased    JobStatus = "leased"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// Terminal reports whether no further transitions occur from s.
// Cron jobs are the exception: they are re-armed instead of completed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) String() string {
	return string(s)
}

// Job is one unit of scheduled work.
type Job struct {
	ID             int64
	TaskType       string
	Payload        json.RawMessage
	Status         JobStatus
	Attempts       int
	MaxRetries     int
	NotBefore      time.Time
	UniquenessKey  *string
	CronExpression *string
	LastError      *string
	LeasedBy       *string
	LeasedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EnqueueParams carries everything the store needs to insert a job.
// The policy fields (MaxRetries, UniquenessKey, CronExpression) are
// resolved by the caller at enqueue time and are immutable afterwards.
type EnqueueParams struct {
	TaskType       string
	Payload        json.RawMessage
	MaxRetries     int
	NotBefore      time.Time
	UniquenessKey  *string
	CronExpression *string
}

// Ingredient is a named nutritional entity. Name is a case-insensitive
// identity. Macro fields are per one gram of the ingredient.
// ParentIngredients are back-references only, never used for ownership.
type Ingredient struct {
	ID                int64
	Name              string
	Branded           bool
	ProteinPerGram    *float64
	CarbsPerGram      *float64
	FatPerGram        *float64
	FiberPerGram      *float64
	SubIngredients    []int64
	ParentIngredients []int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Product is a cached record from the product data provider.
type Product struct {
	ID              int64
	Barcode         string
	ProductName     *string
	Brands          *string
	Categories      *string
	Quantity        *string
	ImageURL        *string
	NutriscoreGrade *string
	NovaGroup       *int
	EcoscoreGrade   *string
	IngredientsText *string
	Allergens       *string
	FullResponse    json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
