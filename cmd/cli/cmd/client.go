package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spoils/pkg/api"
)

// SpoilsClient handles API calls to the spoils server.
type SpoilsClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewSpoilsClient creates a new client with the given base URL and token.
func NewSpoilsClient(baseURL, token string) *SpoilsClient {
	return &SpoilsClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do runs one request and decodes the 2xx response into out.
func (c *SpoilsClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.Token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// FetchProduct sends POST /api/jobs/fetch-product.
func (c *SpoilsClient) FetchProduct(barcode string) (*api.EnqueueResponse, error) {
	var result api.EnqueueResponse
	if err := c.do(http.MethodPost, "/api/jobs/fetch-product", api.FetchProductRequest{Barcode: barcode}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notify sends POST /api/jobs/notify.
func (c *SpoilsClient) Notify(req api.NotifyRequest) (*api.EnqueueResponse, error) {
	var result api.EnqueueResponse
	if err := c.do(http.MethodPost, "/api/jobs/notify", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResolveIngredient sends POST /api/ingredients/resolve.
func (c *SpoilsClient) ResolveIngredient(name string) (*api.ResolveIngredientResponse, error) {
	var result api.ResolveIngredientResponse
	if err := c.do(http.MethodPost, "/api/ingredients/resolve", api.ResolveIngredientRequest{Name: name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIngredient sends GET /api/ingredients/{name}.
func (c *SpoilsClient) GetIngredient(name string) (*api.IngredientResponse, error) {
	var result api.IngredientResponse
	if err := c.do(http.MethodGet, "/api/ingredients/"+name, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetJob sends GET /api/jobs/{id}.
func (c *SpoilsClient) GetJob(id string) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodGet, "/api/jobs/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
