// Package openfoodfacts fetches product records by barcode from the
// Open Food Facts v2 API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Product is the subset of the provider response we persist, plus the
// raw body so later schema additions can be backfilled without
// re-fetching.
type Product struct {
	Barcode         string
	ProductName     *string
	Brands          *string
	Categories      *string
	Quantity        *string
	ImageURL        *string
	NutriscoreGrade *string
	NovaGroup       *int
	EcoscoreGrade   *string
	IngredientsText *string
	Allergens       *string
	Raw             json.RawMessage
}

// Client fetches products by barcode. A (nil, nil) return means the
// provider knows no product under that barcode.
type Client interface {
	Fetch(ctx context.Context, barcode string) (*Product, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewHTTPClient(baseURL string, log *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log,
	}
}

type fetchResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     *string  `json:"product_name"`
		Brands          *string  `json:"brands"`
		Categories      *string  `json:"categories"`
		Quantity        *string  `json:"quantity"`
		ImageURL        *string  `json:"image_url"`
		NutriscoreGrade *string  `json:"nutriscore_grade"`
		NovaGroup       *float64 `json:"nova_group"`
		EcoscoreGrade   *string  `json:"ecoscore_grade"`
		IngredientsText *string  `json:"ingredients_text"`
		Allergens       *string  `json:"allergens"`
	} `json:"product"`
}

// Fetch retrieves the product record for barcode. Unknown barcodes are
// not errors, they are the provider's way of saying "no such product";
// transport and HTTP failures are errors so the job layer retries them.
func (c *HTTPClient) Fetch(ctx context.Context, barcode string) (*Product, error) {
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}
	req.Header.Set("User-Agent", "spoils/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	// The v2 API answers 404 for unknown barcodes on some deployments
	// and status=0 on others; both mean not found.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product response: %w", err)
	}

	var body fetchResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	if body.Status != 1 {
		return nil, nil
	}

	p := &Product{
		Barcode:         barcode,
		ProductName:     body.Product.ProductName,
		Brands:          body.Product.Brands,
		Categories:      body.Product.Categories,
		Quantity:        body.Product.Quantity,
		ImageURL:        body.Product.ImageURL,
		NutriscoreGrade: body.Product.NutriscoreGrade,
		EcoscoreGrade:   body.Product.EcoscoreGrade,
		IngredientsText: body.Product.IngredientsText,
		Allergens:       body.Product.Allergens,
		Raw:             json.RawMessage(raw),
	}
	if body.Product.NovaGroup != nil {
		n := int(*body.Product.NovaGroup)
		p.NovaGroup = &n
	}
	return p, nil
}
