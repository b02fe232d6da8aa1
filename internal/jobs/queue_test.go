package jobs

import (
	"context"
	"testing"
	"time"

	"spoils/internal/logger"
	"spoils/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore captures EnqueueJob parameters and fakes suppression.
type recordingStore struct {
	store.JobStore

	params   []store.EnqueueParams
	nextID   int64
	existing map[string]int64 // uniqueness key -> id of a pending job
}

func (r *recordingStore) EnqueueJob(ctx context.Context, params store.EnqueueParams) (int64, bool, error) {
	r.params = append(r.params, params)
	if params.UniquenessKey != nil {
		if id, ok := r.existing[*params.UniquenessKey]; ok {
			return id, false, nil
		}
	}
	r.nextID++
	if params.UniquenessKey != nil {
		if r.existing == nil {
			r.existing = make(map[string]int64)
		}
		r.existing[*params.UniquenessKey] = r.nextID
	}
	return r.nextID, true, nil
}

func newTestQueue(t *testing.T, rs *recordingStore) (*Queue, *Registry) {
	t.Helper()
	r := NewRegistry()
	q := NewQueue(rs, r, logger.New())
	return q, r
}

func TestEnqueue_ResolvesPolicy(t *testing.T) {
	rs := &recordingStore{}
	q, r := newTestQueue(t, rs)
	require.NoError(t, r.Register("fetch_product", Policy{MaxRetries: 3, Unique: true}, noopHandler))

	id, created, err := q.Enqueue(context.Background(), "fetch_product", map[string]string{"barcode": "123"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), id)

	require.Len(t, rs.params, 1)
	p := rs.params[0]
	assert.Equal(t, "fetch_product", p.TaskType)
	assert.Equal(t, 3, p.MaxRetries)
	require.NotNil(t, p.UniquenessKey)
	assert.Nil(t, p.CronExpression)
	assert.JSONEq(t, `{"barcode":"123"}`, string(p.Payload))
}

func TestEnqueue_DuplicateSuppressed(t *testing.T) {
	rs := &recordingStore{}
	q, r := newTestQueue(t, rs)
	require.NoError(t, r.Register("create_ingredient", Policy{Unique: true}, noopHandler))

	id1, created1, err := q.Enqueue(context.Background(), "create_ingredient", map[string]string{"name": "salt"})
	require.NoError(t, err)
	assert.True(t, created1)

	id2, created2, err := q.Enqueue(context.Background(), "create_ingredient", map[string]string{"name": "salt"})
	require.NoError(t, err)
	assert.False(t, created2, "second enqueue of the same payload must be suppressed")
	assert.Equal(t, id1, id2)
}

func TestEnqueue_NonUniqueAlwaysCreates(t *testing.T) {
	rs := &recordingStore{}
	q, r := newTestQueue(t, rs)
	require.NoError(t, r.Register("send_notification", Policy{MaxRetries: 5}, noopHandler))

	_, created1, err := q.Enqueue(context.Background(), "send_notification", map[string]any{"user_id": 1})
	require.NoError(t, err)
	_, created2, err2 := q.Enqueue(context.Background(), "send_notification", map[string]any{"user_id": 1})
	require.NoError(t, err2)

	assert.True(t, created1)
	assert.True(t, created2)
	assert.Nil(t, rs.params[0].UniquenessKey)
}

func TestEnqueue_CronScheduledAtNextOccurrence(t *testing.T) {
	rs := &recordingStore{}
	q, r := newTestQueue(t, rs)
	require.NoError(t, r.Register("cleanup", Policy{MaxRetries: 1, Unique: true, Cron: "0 2 * * *"}, noopHandler))

	before := time.Now().UTC()
	_, _, err := q.Enqueue(context.Background(), "cleanup", struct{}{})
	require.NoError(t, err)

	p := rs.params[0]
	require.NotNil(t, p.CronExpression)
	assert.Equal(t, "0 2 * * *", *p.CronExpression)
	assert.True(t, p.NotBefore.After(before), "cron job must wait for its first occurrence")
	assert.Equal(t, 2, p.NotBefore.Hour())
}

func TestEnqueue_UnregisteredType(t *testing.T) {
	rs := &recordingStore{}
	q, _ := newTestQueue(t, rs)

	_, _, err := q.Enqueue(context.Background(), "no_such_type", struct{}{})
	assert.ErrorIs(t, err, ErrUnknownTaskType)
	assert.Empty(t, rs.params, "nothing may reach the store for an unregistered type")
}
