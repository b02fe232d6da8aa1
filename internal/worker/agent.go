// Package worker contains the pull-loop that leases jobs and runs them
// through the job type registry.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spoils/internal/jobs"
	"spoils/internal/logger"
	"spoils/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AgentConfig holds configuration for the worker agent.
type AgentConfig struct {
	ID           string
	Concurrency  int
	PollInterval time.Duration
	MaxBackoff   time.Duration // Maximum backoff when the queue is empty (default: 30s)
	LeaseTimeout time.Duration // Leases older than this are reclaimed at startup (default: 5m)
}

// Agent is the worker that runs the lease-execute-report loop. Several
// agents may run against the same store concurrently; LeaseNext is the
// only mutual-exclusion boundary between them.
type Agent struct {
	store    store.JobStore
	registry *jobs.Registry
	queue    jobs.Enqueuer
	config   AgentConfig
	log      *slog.Logger
	done     chan struct{}

	tracer       trace.Tracer
	jobsDone     metric.Int64Counter
	jobsDuration metric.Float64Histogram
}

// New creates a new worker agent.
func New(js store.JobStore, registry *jobs.Registry, queue jobs.Enqueuer, config AgentConfig, log *slog.Logger) *Agent {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.LeaseTimeout <= 0 {
		config.LeaseTimeout = 5 * time.Minute
	}

	meter := otel.Meter("spoils-worker")
	jobsDone, _ := meter.Int64Counter("spoils.jobs.processed",
		metric.WithDescription("Jobs processed, by task type and outcome"))
	jobsDuration, _ := meter.Float64Histogram("spoils.jobs.duration",
		metric.WithDescription("Job execution duration in seconds"),
		metric.WithUnit("s"))

	return &Agent{
		store:        js,
		registry:     registry,
		queue:        queue,
		config:       config,
		log:          log.With("worker_id", config.ID),
		done:         make(chan struct{}),
		tracer:       otel.Tracer("spoils-worker"),
		jobsDone:     jobsDone,
		jobsDuration: jobsDuration,
	}
}

// Done is closed once Run has drained all in-flight jobs.
func (a *Agent) Done() <-chan struct{} {
	return a.done
}

// Run starts the main pull-loop. It blocks until the context is
// cancelled; in-flight jobs are allowed to finish before Done closes.
func (a *Agent) Run(ctx context.Context) error {
	a.log.Info("agent starting", "concurrency", a.config.Concurrency)

	// Leases abandoned by a crashed worker would otherwise sit leased
	// forever; requeue anything stuck past the lease timeout.
	if n, err := a.store.ReclaimStale(ctx, time.Now().Add(-a.config.LeaseTimeout)); err != nil {
		a.log.Error("failed to reclaim stale leases", "error", err)
	} else if n > 0 {
		a.log.Info("reclaimed stale leases", "count", n)
	}

	// Semaphore to limit concurrency
	sem := make(chan struct{}, a.config.Concurrency)
	var wg sync.WaitGroup

	// Channel to signal when a slot becomes available (adaptive polling)
	pollNow := make(chan struct{}, 1)

	// Current backoff duration (increases on empty queue, resets on work found)
	currentBackoff := a.config.PollInterval

	triggerPoll := func() {
		select {
		case pollNow <- struct{}{}:
		default:
			// Already a poll pending
		}
	}

	triggerPoll()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("context cancelled, waiting for running jobs to finish")
			wg.Wait()
			close(a.done)
			return ctx.Err()

		case <-time.After(currentBackoff):
			triggerPoll()

		case <-pollNow:
			availableSlots := a.config.Concurrency - len(sem)
			if availableSlots <= 0 {
				continue
			}

			leased, err := a.store.LeaseNext(ctx, a.config.ID, availableSlots)
			if err != nil {
				// Store connectivity is retried at our own poll cadence.
				a.log.Error("lease failed", "error", err)
				continue
			}

			if len(leased) == 0 {
				// Empty queue - increase backoff (exponential, capped at MaxBackoff)
				currentBackoff = currentBackoff * 2
				if currentBackoff > a.config.MaxBackoff {
					currentBackoff = a.config.MaxBackoff
				}
				continue
			}

			// Found work - reset backoff to minimum
			currentBackoff = a.config.PollInterval

			for _, job := range leased {
				sem <- struct{}{}

				wg.Add(1)
				go func(job store.Job) {
					defer wg.Done()
					defer func() {
						<-sem
						// A slot opened up - poll again immediately
						triggerPoll()
					}()
					a.process(ctx, job)
				}(job)
			}

			if len(leased) < availableSlots {
				triggerPoll()
			}
		}
	}
}

// process runs one leased job and reports the outcome. Failures are
// isolated: nothing a handler does (including panicking) may affect
// sibling jobs leased in the same batch.
func (a *Agent) process(pollCtx context.Context, job store.Job) {
	log := logger.WithJob(a.log, job.ID, job.TaskType, job.Attempts)

	// Once leased, a job runs to completion or failure. Execution and
	// outcome reporting are detached from the poll loop's cancellation
	// so shutdown drains in-flight work instead of aborting it.
	ctx := context.WithoutCancel(pollCtx)

	ctx, span := a.tracer.Start(ctx, "job.execute", trace.WithAttributes(
		attribute.String("job.task_type", job.TaskType),
		attribute.Int64("job.id", job.ID),
		attribute.Int("job.attempt", job.Attempts),
	))
	defer span.End()

	// A handler running past its lease would be reclaimed and re-run
	// anyway; bound it at the lease timeout.
	execCtx, cancel := context.WithTimeout(ctx, a.config.LeaseTimeout)
	start := time.Now()
	err := a.execute(execCtx, job)
	cancel()
	elapsed := time.Since(start)

	a.jobsDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("task_type", job.TaskType)))

	if err == nil {
		if cerr := a.store.CompleteJob(ctx, job.ID); cerr != nil {
			log.Error("failed to record completion", "error", cerr)
			return
		}
		log.Info("job completed", "duration", elapsed)
		a.jobsDone.Add(ctx, 1, metric.WithAttributes(
			attribute.String("task_type", job.TaskType),
			attribute.String("outcome", "completed"),
		))
		return
	}

	entry, lerr := a.registry.Lookup(job.TaskType)
	var delay time.Duration
	if lerr == nil {
		delay = entry.Policy.RetryDelay(job.Attempts)
	}

	status, ferr := a.store.FailJob(ctx, job.ID, err.Error(), delay)
	if ferr != nil {
		log.Error("failed to record failure", "error", ferr)
		return
	}

	if status == store.JobStatusFailed {
		// Retry budget exhausted: terminal, loud, never silently dropped.
		log.Error("job permanently failed", "error", err)
	} else {
		log.Warn("job failed, will retry", "error", err, "retry_in", delay, "status", status)
	}
	a.jobsDone.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", job.TaskType),
		attribute.String("outcome", string(status)),
	))
}

// execute dispatches the job to its registered handler, converting
// panics into ordinary failures.
func (a *Agent) execute(ctx context.Context, job store.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	entry, lerr := a.registry.Lookup(job.TaskType)
	if lerr != nil {
		// Registration is closed at startup, so a stored job with an
		// unknown type can only come from a misdeployed producer.
		return lerr
	}

	return entry.Handler(ctx, job.Payload, a.queue)
}
