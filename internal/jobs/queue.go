package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"spoils/internal/schedule"
	"spoils/internal/store"
)

// Queue is the write path into the job store. It resolves the task
// type's policy (retry budget, uniqueness key, cron schedule) at
// enqueue time and hands the result to the store. Producers and job
// handlers alike submit through it.
type Queue struct {
	store    store.JobStore
	registry *Registry
	log      *slog.Logger
}

// NewQueue creates a queue writing through js with policies from r.
func NewQueue(js store.JobStore, r *Registry, log *slog.Logger) *Queue {
	return &Queue{store: js, registry: r, log: log}
}

// Enqueue submits a job of the given task type. The returned created
// flag is false when an equivalent unique job was already pending and
// the submission collapsed onto it. That is not an error.
func (q *Queue) Enqueue(ctx context.Context, taskType string, payload any) (int64, bool, error) {
	entry, err := q.registry.Lookup(taskType)
	if err != nil {
		return 0, false, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, false, fmt.Errorf("jobs: failed to marshal %s payload: %w", taskType, err)
	}

	params := store.EnqueueParams{
		TaskType:   taskType,
		Payload:    raw,
		MaxRetries: entry.Policy.MaxRetries,
		NotBefore:  time.Now().UTC(),
	}

	if entry.Policy.Unique {
		key := UniquenessKey(taskType, raw)
		params.UniquenessKey = &key
	}

	if entry.Policy.Cron != "" {
		cron := entry.Policy.Cron
		params.CronExpression = &cron
		next, err := schedule.Next(cron, params.NotBefore)
		if err != nil {
			return 0, false, fmt.Errorf("jobs: %s: %w", taskType, err)
		}
		params.NotBefore = next
	}

	id, created, err := q.store.EnqueueJob(ctx, params)
	if err != nil {
		return 0, false, err
	}

	if !created {
		q.log.Info("duplicate enqueue suppressed", "task_type", taskType, "job_id", id)
	}
	return id, created, nil
}
