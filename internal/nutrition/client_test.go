package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spoils/internal/logger"
)

func TestSearch_ConvertsPer100gToPerGram(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "oats", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"foods": [{
				"description": "Rolled Oats",
				"ingredients": "Whole Grain Oats.",
				"foodNutrients": [
					{"nutrientId": 1003, "value": 13.0},
					{"nutrientId": 1004, "value": 6.5},
					{"nutrientId": 1005, "value": 68.0},
					{"nutrientId": 1079, "value": 10.0},
					{"nutrientId": 1008, "value": 379.0}
				]
			}]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", logger.New())
	food, err := c.Search(context.Background(), "oats")
	require.NoError(t, err)
	require.NotNil(t, food)

	assert.Equal(t, "Rolled Oats", food.Description)
	require.NotNil(t, food.ProteinPerGram)
	assert.InDelta(t, 0.13, *food.ProteinPerGram, 1e-9)
	require.NotNil(t, food.FatPerGram)
	assert.InDelta(t, 0.065, *food.FatPerGram, 1e-9)
	require.NotNil(t, food.CarbsPerGram)
	assert.InDelta(t, 0.68, *food.CarbsPerGram, 1e-9)
	require.NotNil(t, food.FiberPerGram)
	assert.InDelta(t, 0.10, *food.FiberPerGram, 1e-9)
}

func TestSearch_NoHitsMeansNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"foods": []}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", logger.New())
	food, err := c.Search(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestSearch_NonOKStatusMeansNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", logger.New())
	food, err := c.Search(context.Background(), "oats")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestSearch_MalformedBodyMeansNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", logger.New())
	food, err := c.Search(context.Background(), "oats")
	require.NoError(t, err)
	assert.Nil(t, food)
}

func TestSearch_TransportErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewHTTPClient(srv.URL, "k", logger.New())
	_, err := c.Search(context.Background(), "oats")
	assert.Error(t, err)
}

func TestSearch_PartialNutrients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"foods": [{
				"description": "Salt",
				"foodNutrients": [{"nutrientId": 1003, "value": 0.0}]
			}]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", logger.New())
	food, err := c.Search(context.Background(), "salt")
	require.NoError(t, err)
	require.NotNil(t, food)

	require.NotNil(t, food.ProteinPerGram)
	assert.Zero(t, *food.ProteinPerGram)
	assert.Nil(t, food.FatPerGram)
	assert.Nil(t, food.CarbsPerGram)
	assert.Nil(t, food.FiberPerGram)
}
