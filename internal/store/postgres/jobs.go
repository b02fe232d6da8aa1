package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spoils/internal/schedule"
	"spoils/internal/store"
)

const jobColumns = `id, task_type, payload, status, attempts, max_retries, not_before,
	       uniqueness_key, cron_expression, last_error, leased_by, leased_at,
	       created_at, updated_at`

// EnqueueJob inserts a new pending job. The partial unique index on
// uniqueness_key over non-terminal statuses is the arbiter: a second
// enqueue with the same key while a prior instance is unresolved hits
// ON CONFLICT DO NOTHING, and the existing job's id is returned instead.
func (s *Store) EnqueueJob(ctx context.Context, params store.EnqueueParams) (int64, bool, error) {
	query := `
		INSERT INTO jobs (task_type, payload, max_retries, not_before, uniqueness_key, cron_expression)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uniqueness_key)
		WHERE uniqueness_key IS NOT NULL AND status IN ('pending', 'leased', 'retrying')
		DO NOTHING
		RETURNING id
	`

	notBefore := params.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().UTC()
	}

	// The loop covers the window where the conflicting job goes
	// terminal between the suppressed insert and the lookup.
	for attempt := 0; attempt < 3; attempt++ {
		var id int64
		err := s.db.QueryRowContext(ctx, query,
			params.TaskType,
			params.Payload,
			params.MaxRetries,
			notBefore,
			params.UniquenessKey,
			params.CronExpression,
		).Scan(&id)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, false, fmt.Errorf("failed to enqueue %s job: %w", params.TaskType, err)
		}
		if params.UniquenessKey == nil {
			// Only a uniqueness conflict suppresses the insert.
			return 0, false, fmt.Errorf("failed to enqueue %s job: insert returned no row", params.TaskType)
		}

		existing, err := s.FindJobByUniquenessKey(ctx, *params.UniquenessKey)
		if err == nil {
			return existing.ID, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, false, err
		}
	}

	return 0, false, fmt.Errorf("failed to enqueue %s job: uniqueness conflict did not settle", params.TaskType)
}

// LeaseNext claims up to limit runnable jobs in one statement. The
// inner SELECT ... FOR UPDATE SKIP LOCKED is the mutual-exclusion
// boundary: concurrent callers skip each other's rows instead of
// blocking or double-claiming.
func (s *Store) LeaseNext(ctx context.Context, workerID string, limit int) ([]store.Job, error) {
	if limit <= 0 {
		limit = 1
	}

	query := `
		UPDATE jobs
		SET status = 'leased',
		    leased_by = $1,
		    leased_at = NOW(),
		    updated_at = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status IN ('pending', 'retrying') AND not_before <= NOW()
			ORDER BY not_before ASC, created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		RETURNING ` + jobColumns

	rows, err := s.db.QueryContext(ctx, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("lease query failed: %w", err)
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("lease scan failed: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lease rows error: %w", err)
	}

	return jobs, nil
}

// CompleteJob marks a run as succeeded. A cron job is re-armed to its
// next occurrence instead of going terminal.
func (s *Store) CompleteJob(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin complete tx: %w", err)
	}
	defer tx.Rollback()

	var cronExpr sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT cron_expression FROM jobs WHERE id = $1 FOR UPDATE`, id,
	).Scan(&cronExpr)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load job %d: %w", id, err)
	}

	if cronExpr.Valid {
		next, err := schedule.Next(cronExpr.String, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to re-arm job %d: %w", id, err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'pending',
			    attempts = 0,
			    not_before = $2,
			    last_error = NULL,
			    leased_by = NULL,
			    leased_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id, next)
		if err != nil {
			return fmt.Errorf("failed to re-arm job %d: %w", id, err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'completed',
			    leased_by = NULL,
			    leased_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("failed to complete job %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// FailJob records a failed attempt and decides the next transition:
// retrying with a backoff delay while budget remains, terminal failed
// once attempts exceed max_retries, except that cron jobs are re-armed
// to their next occurrence rather than left terminal.
func (s *Store) FailJob(ctx context.Context, id int64, jobErr string, retryDelay time.Duration) (store.JobStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin fail tx: %w", err)
	}
	defer tx.Rollback()

	var attempts, maxRetries int
	var cronExpr sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT attempts, max_retries, cron_expression FROM jobs WHERE id = $1 FOR UPDATE`, id,
	).Scan(&attempts, &maxRetries, &cronExpr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load job %d: %w", id, err)
	}

	attempts++

	switch {
	case attempts <= maxRetries:
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'retrying',
			    attempts = $2,
			    last_error = $3,
			    not_before = NOW() + ($4 * INTERVAL '1 second'),
			    leased_by = NULL,
			    leased_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id, attempts, jobErr, retryDelay.Seconds())
		if err != nil {
			return "", fmt.Errorf("failed to schedule retry for job %d: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return store.JobStatusRetrying, nil

	case cronExpr.Valid:
		// Retry budget exhausted, but the schedule persists: give up on
		// this run and wait for the next occurrence.
		next, nerr := schedule.Next(cronExpr.String, time.Now().UTC())
		if nerr != nil {
			return "", fmt.Errorf("failed to re-arm job %d: %w", id, nerr)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'pending',
			    attempts = 0,
			    last_error = $2,
			    not_before = $3,
			    leased_by = NULL,
			    leased_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id, jobErr, next)
		if err != nil {
			return "", fmt.Errorf("failed to re-arm job %d: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return store.JobStatusPending, nil

	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'failed',
			    attempts = $2,
			    last_error = $3,
			    leased_by = NULL,
			    leased_at = NULL,
			    updated_at = NOW()
			WHERE id = $1
		`, id, attempts, jobErr)
		if err != nil {
			return "", fmt.Errorf("failed to mark job %d failed: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return store.JobStatusFailed, nil
	}
}

// GetJob returns a job by id.
func (s *Store) GetJob(ctx context.Context, id int64) (*store.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return job, nil
}

// FindJobByUniquenessKey returns the non-terminal job holding key.
func (s *Store) FindJobByUniquenessKey(ctx context.Context, key string) (*store.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE uniqueness_key = $1 AND status IN ('pending', 'leased', 'retrying')
	`, key)

	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job by key: %w", err)
	}
	return job, nil
}

// ReclaimStale requeues leases abandoned by crashed workers.
func (s *Store) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'pending',
		    leased_by = NULL,
		    leased_at = NULL,
		    updated_at = NOW()
		WHERE status = 'leased' AND leased_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim stale leases: %w", err)
	}
	return res.RowsAffected()
}

// DeleteTerminalBefore purges old terminal jobs.
func (s *Store) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE status IN ('completed', 'failed') AND updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge terminal jobs: %w", err)
	}
	return res.RowsAffected()
}

// CountRunnable returns the number of jobs eligible to run now.
func (s *Store) CountRunnable(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs
		WHERE status IN ('pending', 'retrying') AND not_before <= NOW()
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runnable jobs: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(rows *sql.Rows) (*store.Job, error) {
	return scanJobRow(rows)
}

func scanJobRow(row rowScanner) (*store.Job, error) {
	var job store.Job
	if err := row.Scan(
		&job.ID,
		&job.TaskType,
		&job.Payload,
		&job.Status,
		&job.Attempts,
		&job.MaxRetries,
		&job.NotBefore,
		&job.UniquenessKey,
		&job.CronExpression,
		&job.LastError,
		&job.LeasedBy,
		&job.LeasedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}
