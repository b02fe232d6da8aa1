package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spoils/internal/jobs"
)

// Task type discriminators. These are stored on job rows, so renaming
// one strands jobs already queued under the old name.
const (
	TaskFetchProduct       = "fetch_product"
	TaskAnalyzeIngredients = "analyze_ingredients"
	TaskCreateIngredient   = "create_ingredient"
	TaskSendNotification   = "send_notification"
	TaskCleanup            = "cleanup"
)

// CleanupCron runs the housekeeping task nightly at 02:00.
const CleanupCron = "0 2 * * *"

type FetchProductPayload struct {
	Barcode string `json:"barcode"`
}

type AnalyzeIngredientsPayload struct {
	ProductID int64 `json:"product_id"`
}

type CreateIngredientPayload struct {
	Name string `json:"name"`
}

type NotifyPayload struct {
	UserID           int64  `json:"user_id"`
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
}

// Register wires every task type, its policy, and its executor into
// the registry. Called once at startup; a bad policy panics there
// rather than surfacing per job.
func (r *Resolver) Register(registry *jobs.Registry) {
	registry.MustRegister(TaskFetchProduct, jobs.Policy{
		MaxRetries: 3,
		Backoff:    jobs.Exponential(60*time.Second, 0),
		Unique:     true,
	}, typed(r.fetchProduct))

	registry.MustRegister(TaskAnalyzeIngredients, jobs.Policy{
		MaxRetries: 2,
		Unique:     true,
	}, typed(r.analyzeIngredients))

	registry.MustRegister(TaskCreateIngredient, jobs.Policy{
		MaxRetries: 3,
		Unique:     true,
	}, typed(r.createIngredient))

	registry.MustRegister(TaskSendNotification, jobs.Policy{
		MaxRetries: 5,
	}, typed(r.sendNotification))

	registry.MustRegister(TaskCleanup, jobs.Policy{
		MaxRetries: 1,
		Unique:     true,
		Cron:       CleanupCron,
	}, func(ctx context.Context, _ json.RawMessage, _ jobs.Enqueuer) error {
		return r.cleanup(ctx)
	})
}

// typed adapts a payload-typed executor to the registry's HandlerFunc,
// centralizing payload deserialization.
func typed[P any](fn func(ctx context.Context, payload P) error) jobs.HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage, _ jobs.Enqueuer) error {
		var payload P
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
		return fn(ctx, payload)
	}
}
