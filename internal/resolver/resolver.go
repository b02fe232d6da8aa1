// Package resolver implements the ingredient resolution workflow: the
// find-or-enqueue lookup, the job executors behind each task type, and
// the recursive decomposition of ingredient statements into further
// create_ingredient jobs.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spoils/internal/jobs"
	"spoils/internal/nutrition"
	"spoils/internal/openfoodfacts"
	"spoils/internal/store"
)

// Config carries the housekeeping knobs used by the cleanup task.
type Config struct {
	// JobRetention is how long terminal jobs are kept before the
	// cleanup task purges them.
	JobRetention time.Duration

	// LeaseTimeout is how long a job may stay leased before cleanup
	// considers its worker dead and requeues it.
	LeaseTimeout time.Duration
}

// Housekeeper is the slice of the job store the cleanup task needs.
type Housekeeper interface {
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Resolver owns the domain logic layered on the job engine. It never
// touches job internals directly; all scheduling goes through the
// Enqueuer contract.
type Resolver struct {
	ingredients store.IngredientStore
	products    store.ProductStore
	jobStore    Housekeeper
	queue       jobs.Enqueuer
	nutrition   nutrition.Client
	provider    openfoodfacts.Client
	config      Config
	log         *slog.Logger
}

// New creates a resolver.
func New(
	ingredients store.IngredientStore,
	products store.ProductStore,
	jobStore Housekeeper,
	queue jobs.Enqueuer,
	nutritionClient nutrition.Client,
	provider openfoodfacts.Client,
	config Config,
	log *slog.Logger,
) *Resolver {
	if config.JobRetention <= 0 {
		config.JobRetention = 30 * 24 * time.Hour
	}
	if config.LeaseTimeout <= 0 {
		config.LeaseTimeout = 5 * time.Minute
	}
	return &Resolver{
		ingredients: ingredients,
		products:    products,
		jobStore:    jobStore,
		queue:       queue,
		nutrition:   nutritionClient,
		provider:    provider,
		config:      config,
		log:         log,
	}
}

// normalizeName canonicalizes an ingredient name. Identity is
// case-insensitive, so the creation payload carries the folded form and
// case variants of one ingredient collapse onto one uniqueness key.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindOrEnqueueCreation resolves an ingredient name. When the
// ingredient already exists it is returned directly and no job is
// created. Otherwise a create_ingredient job is enqueued; concurrent
// callers resolving the same missing name collapse onto one job via
// the uniqueness key.
//
// The check-then-act across the ingredient table and the job store is
// not atomic. The window is acceptable because both sides are
// individually idempotent: the job store suppresses duplicate enqueues
// and the ingredient insert tolerates a racing duplicate.
func (r *Resolver) FindOrEnqueueCreation(ctx context.Context, name string) (ing *store.Ingredient, jobID int64, err error) {
	name = normalizeName(name)
	if name == "" {
		return nil, 0, fmt.Errorf("empty ingredient name")
	}

	ing, err = r.ingredients.FindIngredientByName(ctx, name)
	if err == nil {
		return ing, 0, nil
	}
	if err != store.ErrNotFound {
		return nil, 0, fmt.Errorf("failed to look up ingredient %q: %w", name, err)
	}

	jobID, created, err := r.queue.Enqueue(ctx, TaskCreateIngredient, CreateIngredientPayload{Name: name})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to enqueue creation of %q: %w", name, err)
	}
	if !created {
		r.log.Debug("creation already in flight", "name", name, "job_id", jobID)
	}
	return nil, jobID, nil
}

// createIngredient is the create_ingredient executor. Absence of
// nutrition data is a valid terminal outcome: the ingredient row is
// still created, just without macros or sub-ingredients.
func (r *Resolver) createIngredient(ctx context.Context, payload CreateIngredientPayload) error {
	name := normalizeName(payload.Name)
	if name == "" {
		return fmt.Errorf("empty ingredient name")
	}

	food, err := r.nutrition.Search(ctx, name)
	if err != nil {
		return fmt.Errorf("nutrition lookup for %q: %w", name, err)
	}

	ing := &store.Ingredient{Name: name}
	if food != nil {
		ing.Branded = food.Ingredients != ""
		ing.ProteinPerGram = food.ProteinPerGram
		ing.CarbsPerGram = food.CarbsPerGram
		ing.FatPerGram = food.FatPerGram
		ing.FiberPerGram = food.FiberPerGram
	}

	id, created, err := r.ingredients.InsertIngredient(ctx, ing)
	if err != nil {
		return fmt.Errorf("failed to insert ingredient %q: %w", name, err)
	}
	if !created {
		r.log.Debug("ingredient already existed", "name", name, "ingredient_id", id)
	} else {
		r.log.Info("ingredient created", "name", name, "ingredient_id", id, "has_nutrition", food != nil)
	}

	if food == nil || food.Ingredients == "" {
		// Basic ingredient, decomposition stops here.
		return nil
	}

	// Fan out unconditionally; the uniqueness key on the task payload
	// is the only guard against a name reappearing down the tree.
	for _, sub := range SplitIngredientStatement(food.Ingredients) {
		child, _, err := r.FindOrEnqueueCreation(ctx, sub)
		if err != nil {
			return fmt.Errorf("failed to fan out to %q: %w", sub, err)
		}
		if child != nil {
			if err := r.ingredients.LinkSubIngredient(ctx, id, child.ID); err != nil {
				return fmt.Errorf("failed to link %q under %q: %w", sub, name, err)
			}
		}
	}
	return nil
}

// fetchProduct is the fetch_product executor: fetch by barcode, cache
// the record, and hand the ingredient statement off to analysis.
func (r *Resolver) fetchProduct(ctx context.Context, payload FetchProductPayload) error {
	if payload.Barcode == "" {
		return fmt.Errorf("empty barcode")
	}

	fetched, err := r.provider.Fetch(ctx, payload.Barcode)
	if err != nil {
		return fmt.Errorf("failed to fetch product %s: %w", payload.Barcode, err)
	}
	if fetched == nil {
		r.log.Info("product not found upstream", "barcode", payload.Barcode)
		return nil
	}

	id, err := r.products.UpsertProduct(ctx, &store.Product{
		Barcode:         fetched.Barcode,
		ProductName:     fetched.ProductName,
		Brands:          fetched.Brands,
		Categories:      fetched.Categories,
		Quantity:        fetched.Quantity,
		ImageURL:        fetched.ImageURL,
		NutriscoreGrade: fetched.NutriscoreGrade,
		NovaGroup:       fetched.NovaGroup,
		EcoscoreGrade:   fetched.EcoscoreGrade,
		IngredientsText: fetched.IngredientsText,
		Allergens:       fetched.Allergens,
		FullResponse:    fetched.Raw,
	})
	if err != nil {
		return fmt.Errorf("failed to store product %s: %w", payload.Barcode, err)
	}
	r.log.Info("product cached", "barcode", payload.Barcode, "product_id", id)

	if _, _, err := r.queue.Enqueue(ctx, TaskAnalyzeIngredients, AnalyzeIngredientsPayload{ProductID: id}); err != nil {
		return fmt.Errorf("failed to enqueue analysis of product %d: %w", id, err)
	}
	return nil
}

// analyzeIngredients is the analyze_ingredients executor: read the
// cached product and resolve each name in its ingredient statement.
func (r *Resolver) analyzeIngredients(ctx context.Context, payload AnalyzeIngredientsPayload) error {
	product, err := r.products.GetProduct(ctx, payload.ProductID)
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", payload.ProductID, err)
	}
	if product.IngredientsText == nil || *product.IngredientsText == "" {
		r.log.Info("product has no ingredient statement", "product_id", product.ID)
		return nil
	}

	names := SplitIngredientStatement(*product.IngredientsText)
	for _, name := range names {
		if _, _, err := r.FindOrEnqueueCreation(ctx, name); err != nil {
			return fmt.Errorf("failed to resolve %q: %w", name, err)
		}
	}
	r.log.Info("product analysis fanned out", "product_id", product.ID, "ingredients", len(names))
	return nil
}

// sendNotification is the send_notification executor. Delivery is a
// structured log record; a real channel would slot in here.
func (r *Resolver) sendNotification(ctx context.Context, payload NotifyPayload) error {
	if payload.Message == "" {
		return fmt.Errorf("empty notification message")
	}
	r.log.Info("notification sent",
		"user_id", payload.UserID,
		"notification_type", payload.NotificationType,
		"message", payload.Message,
	)
	return nil
}

// cleanup is the nightly cron executor: purge old terminal jobs and
// requeue leases abandoned by crashed workers.
func (r *Resolver) cleanup(ctx context.Context) error {
	purged, err := r.jobStore.DeleteTerminalBefore(ctx, time.Now().Add(-r.config.JobRetention))
	if err != nil {
		return fmt.Errorf("failed to purge terminal jobs: %w", err)
	}
	reclaimed, err := r.jobStore.ReclaimStale(ctx, time.Now().Add(-r.config.LeaseTimeout))
	if err != nil {
		return fmt.Errorf("failed to reclaim stale leases: %w", err)
	}
	r.log.Info("cleanup pass finished", "purged", purged, "reclaimed", reclaimed)
	return nil
}
