package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spoils/pkg/api"
)

func TestSpoilsClient_FetchProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/api/jobs/fetch-product" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("expected Bearer token, got: %s", r.Header.Get("Authorization"))
		}

		var req api.FetchProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Barcode != "3017620422003" {
			t.Errorf("unexpected barcode: %s", req.Barcode)
		}

		json.NewEncoder(w).Encode(api.EnqueueResponse{JobID: 11})
	}))
	defer server.Close()

	client := NewSpoilsClient(server.URL, "test-token")
	result, err := client.FetchProduct("3017620422003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.JobID != 11 {
		t.Errorf("got job id %d, want 11", result.JobID)
	}
}

func TestSpoilsClient_ResolveIngredient_Accepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 202 means creation was enqueued rather than answered.
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.ResolveIngredientResponse{JobID: 3, Enqueued: true})
	}))
	defer server.Close()

	client := NewSpoilsClient(server.URL, "")
	result, err := client.ResolveIngredient("Turmeric")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Enqueued || result.JobID != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestSpoilsClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Job not found", Code: "404"})
	}))
	defer server.Close()

	client := NewSpoilsClient(server.URL, "")
	_, err := client.GetJob("999")
	if err == nil {
		t.Fatal("expected an error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, want 404", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "Job not found") {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestSpoilsClient_NoTokenOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header, got: %s", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(api.IngredientResponse{ID: 1, Name: "Salt"})
	}))
	defer server.Close()

	client := NewSpoilsClient(server.URL, "")
	if _, err := client.GetIngredient("Salt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
