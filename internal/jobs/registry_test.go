package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(ctx context.Context, payload json.RawMessage, queue Enqueuer) error {
	return nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	err := r.Register("fetch_product", Policy{MaxRetries: 3, Unique: true}, noopHandler)
	require.NoError(t, err)

	entry, err := r.Lookup("fetch_product")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Policy.MaxRetries)
	assert.True(t, entry.Policy.Unique)
	assert.NotNil(t, entry.Handler)
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("cleanup", Policy{}, noopHandler))

	err := r.Register("cleanup", Policy{}, noopHandler)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_InvalidCron(t *testing.T) {
	r := NewRegistry()

	err := r.Register("cleanup", Policy{Cron: "61 * * * *"}, noopHandler)
	assert.Error(t, err)
}

func TestRegister_Validation(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register("", Policy{}, noopHandler))
	assert.Error(t, r.Register("x", Policy{}, nil))
	assert.Error(t, r.Register("x", Policy{MaxRetries: -1}, noopHandler))
}

func TestLookup_Unregistered(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("no_such_type")
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}

func TestTaskTypes(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("b_type", Policy{}, noopHandler))
	require.NoError(t, r.Register("a_type", Policy{}, noopHandler))

	assert.Equal(t, []string{"a_type", "b_type"}, r.TaskTypes())
}

func TestUniquenessKey(t *testing.T) {
	payload := json.RawMessage(`{"name":"salt"}`)

	key1 := UniquenessKey("create_ingredient", payload)
	key2 := UniquenessKey("create_ingredient", json.RawMessage(`{"name":"salt"}`))
	assert.Equal(t, key1, key2, "identical payloads must derive identical keys")

	key3 := UniquenessKey("create_ingredient", json.RawMessage(`{"name":"sugar"}`))
	assert.NotEqual(t, key1, key3)

	key4 := UniquenessKey("fetch_product", payload)
	assert.NotEqual(t, key1, key4, "key must include the task type")
}
