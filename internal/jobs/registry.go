// Package jobs defines the job type registry: the mapping from a
// task_type discriminator to its execution handler and scheduling
// policy. Registration happens once at process start and is closed
// afterwards; an unregistered task type is a configuration error, not a
// per-job runtime failure.
package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"spoils/internal/schedule"
)

var (
	// ErrUnknownTaskType means a task type was used without being
	// registered first.
	ErrUnknownTaskType = errors.New("jobs: unknown task type")

	// ErrAlreadyRegistered means two handlers were registered for the
	// same task type.
	ErrAlreadyRegistered = errors.New("jobs: task type already registered")
)

// Enqueuer submits further jobs. Handlers receive one so recursive
// fan-out goes through the same uniqueness contract as any other
// submission.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any) (id int64, created bool, err error)
}

// HandlerFunc executes one job. A non-nil error is converted into the
// job's fail transition and counted against its retry budget; it never
// propagates further.
type HandlerFunc func(ctx context.Context, payload json.RawMessage, queue Enqueuer) error

// Policy is the per-type scheduling contract, resolved once at enqueue
// time and immutable on the stored job afterwards.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Backoff computes the delay before retry number attempt
	// (0-indexed at the first retry). Nil means retry immediately.
	Backoff BackoffFunc

	// Unique suppresses duplicate enqueues while a prior job with the
	// same payload is unresolved.
	Unique bool

	// Cron, when set, re-arms the job after every run instead of
	// letting it reach a terminal state.
	Cron string
}

// Entry couples a policy with its handler.
type Entry struct {
	Policy  Policy
	Handler HandlerFunc
}

// Registry maps task types to entries.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a task type. Cron expressions are validated here so a
// bad schedule fails at startup rather than on first completion.
func (r *Registry) Register(taskType string, policy Policy, handler HandlerFunc) error {
	if taskType == "" {
		return fmt.Errorf("jobs: empty task type")
	}
	if handler == nil {
		return fmt.Errorf("jobs: nil handler for %q", taskType)
	}
	if _, exists := r.entries[taskType]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, taskType)
	}
	if policy.Cron != "" {
		if err := schedule.Validate(policy.Cron); err != nil {
			return fmt.Errorf("jobs: %s: %w", taskType, err)
		}
	}
	if policy.MaxRetries < 0 {
		return fmt.Errorf("jobs: %s: negative max retries", taskType)
	}

	r.entries[taskType] = Entry{Policy: policy, Handler: handler}
	return nil
}

// MustRegister is Register for startup wiring, where a registration
// failure is fatal misconfiguration.
func (r *Registry) MustRegister(taskType string, policy Policy, handler HandlerFunc) {
	if err := r.Register(taskType, policy, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for taskType.
func (r *Registry) Lookup(taskType string) (Entry, error) {
	entry, ok := r.entries[taskType]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return entry, nil
}

// TaskTypes lists the registered task types, sorted.
func (r *Registry) TaskTypes() []string {
	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// UniquenessKey derives the suppression key for a unique task type from
// its type and serialized payload. Identical payloads collapse onto one
// key regardless of which caller produced them.
func UniquenessKey(taskType string, payload json.RawMessage) string {
	sum := sha256.Sum256(payload)
	return taskType + ":" + hex.EncodeToString(sum[:])
}
