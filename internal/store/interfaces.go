package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// JobStore handles the persistence of job records. It is the only
// component that touches the jobs table, and LeaseNext is the sole
// mutual-exclusion boundary between concurrent workers.
type JobStore interface {
	// EnqueueJob inserts a new pending job. When params carries a
	// uniqueness key and a non-terminal job with the same key exists,
	// the insert is suppressed and the existing job's id is returned
	// with created=false. Suppression is a normal outcome, not an error.
	EnqueueJob(ctx context.Context, params EnqueueParams) (id int64, created bool, err error)

	// LeaseNext atomically claims up to limit runnable jobs
	// (status pending or retrying, not_before elapsed), marks them
	// leased by workerID, and returns them ordered by not_before then
	// creation time. No job is ever returned to two concurrent callers.
	LeaseNext(ctx context.Context, workerID string, limit int) ([]Job, error)

	// CompleteJob records a successful run. One-shot jobs become
	// terminal completed; cron jobs are re-armed to their next
	// occurrence with attempts reset.
	CompleteJob(ctx context.Context, id int64) error

	// FailJob records a failed attempt. retryDelay is the backoff
	// before the next attempt becomes leasable; it is ignored when the
	// retry budget is exhausted, in which case one-shot jobs become
	// terminal failed and cron jobs are re-armed to their next
	// occurrence. The resulting status is returned.
	FailJob(ctx context.Context, id int64, jobErr string, retryDelay time.Duration) (JobStatus, error)

	// GetJob returns a job by id.
	GetJob(ctx context.Context, id int64) (*Job, error)

	// FindJobByUniquenessKey returns the non-terminal job holding key,
	// or ErrNotFound.
	FindJobByUniquenessKey(ctx context.Context, key string) (*Job, error)

	// ReclaimStale requeues jobs whose lease is older than cutoff.
	// Crashed workers leave jobs leased forever; this is the
	// housekeeping sweep that makes them runnable again.
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteTerminalBefore purges completed and failed jobs last
	// updated before cutoff. Cron jobs are never terminal, so they are
	// never purged.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountRunnable returns the number of jobs eligible to run now.
	CountRunnable(ctx context.Context) (int64, error)
}

// IngredientStore handles ingredient persistence. Rows are created
// exactly once per distinct case-insensitive name and never deleted.
type IngredientStore interface {
	// InsertIngredient inserts ing and returns its id. A racing insert
	// of the same name is surfaced as created=false with the existing
	// row's id, never as an error.
	InsertIngredient(ctx context.Context, ing *Ingredient) (id int64, created bool, err error)

	// FindIngredientByName looks an ingredient up by case-insensitive
	// name, or ErrNotFound.
	FindIngredientByName(ctx context.Context, name string) (*Ingredient, error)

	// GetIngredient returns an ingredient by id.
	GetIngredient(ctx context.Context, id int64) (*Ingredient, error)

	// LinkSubIngredient records child as a sub-ingredient of parent and
	// the parent back-reference on the child. Idempotent.
	LinkSubIngredient(ctx context.Context, parentID, childID int64) error
}

// ProductStore handles the cached product records.
type ProductStore interface {
	// UpsertProduct inserts or refreshes the row for p.Barcode and
	// returns its id.
	UpsertProduct(ctx context.Context, p *Product) (int64, error)

	// GetProductByBarcode returns a product by barcode, or ErrNotFound.
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)

	// GetProduct returns a product by id.
	GetProduct(ctx context.Context, id int64) (*Product, error)
}
