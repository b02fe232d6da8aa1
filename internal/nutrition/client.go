// Package nutrition looks up macro data for an ingredient name from a
// FoodData Central style search API.
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Nutrient IDs as assigned by FoodData Central.
const (
	nutrientProtein = 1003
	nutrientFat     = 1004
	nutrientCarbs   = 1005
	nutrientFiber   = 1079
)

// Food holds the lookup result for one ingredient name. Macro values
// are per gram; a nil field means the provider did not report that
// nutrient.
type Food struct {
	Description    string
	Ingredients    string
	ProteinPerGram *float64
	FatPerGram     *float64
	CarbsPerGram   *float64
	FiberPerGram   *float64
}

// Client resolves an ingredient name to nutrition data. A (nil, nil)
// return means the provider has no data for the name, which is a valid
// outcome rather than an error: the ingredient still gets created, just
// without macros.
type Client interface {
	Search(ctx context.Context, name string) (*Food, error)
}

// HTTPClient talks to the real search API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewHTTPClient creates a client against baseURL. Requests are
// rate-limited to stay inside the provider's per-key quota, which
// matters once ingredient decomposition fans out.
func NewHTTPClient(baseURL, apiKey string, log *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     log,
	}
}

type searchResponse struct {
	Foods []struct {
		Description   string `json:"description"`
		Ingredients   string `json:"ingredients"`
		FoodNutrients []struct {
			NutrientID int64   `json:"nutrientId"`
			Value      float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Search queries the provider for name and returns the best match.
// Transport failures are returned as errors so the caller can retry;
// everything else that prevents a usable answer (non-200, malformed
// body, zero hits) is treated as "no data".
func (c *HTTPClient) Search(ctx context.Context, name string) (*Food, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", name)
	q.Set("dataType", "Branded")
	q.Set("pageSize", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/foods/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nutrition request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutrition search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("nutrition search returned non-OK status", "status", resp.StatusCode, "query", name)
		return nil, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("failed to decode nutrition search response", "error", err, "query", name)
		return nil, nil
	}
	if len(body.Foods) == 0 {
		return nil, nil
	}

	hit := body.Foods[0]
	food := &Food{
		Description: hit.Description,
		Ingredients: hit.Ingredients,
	}
	for _, n := range hit.FoodNutrients {
		// Provider values are per 100 g; store per gram.
		perGram := n.Value / 100
		switch n.NutrientID {
		case nutrientProtein:
			food.ProteinPerGram = &perGram
		case nutrientFat:
			food.FatPerGram = &perGram
		case nutrientCarbs:
			food.CarbsPerGram = &perGram
		case nutrientFiber:
			food.FiberPerGram = &perGram
		}
	}
	return food, nil
}
