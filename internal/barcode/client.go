// Package barcode looks up scanned barcodes against the Open Food Facts
// public product database.
package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/service"
)

// DefaultBaseURL is the Open Food Facts API endpoint.
const DefaultBaseURL = "https://world.openfoodfacts.org"

// Client implements service.BarcodeLookup against Open Food Facts.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// productResponse is the subset of the Open Food Facts payload we read.
type productResponse struct {
	Product struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
		Quantity    string `json:"quantity"`
	} `json:"product"`
	Status int `json:"status"`
}

// NewClient creates a lookup client. An empty baseURL selects the public
// Open Food Facts instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Lookup resolves a barcode. A missing product is not an error: it returns
// Found=false so the worker drops the task without retrying. Network and
// server failures wrap ErrLookupFailed, which the worker treats as transient.
func (c *Client) Lookup(ctx context.Context, code string) (service.BarcodeProduct, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return service.BarcodeProduct{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return service.BarcodeProduct{}, fmt.Errorf("%w: %v", common.ErrLookupFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return service.BarcodeProduct{Found: false}, nil
	case resp.StatusCode != http.StatusOK:
		return service.BarcodeProduct{}, fmt.Errorf("%w: status %d", common.ErrLookupFailed, resp.StatusCode)
	}

	var decoded productResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return service.BarcodeProduct{}, fmt.Errorf("%w: invalid response: %v", common.ErrLookupFailed, err)
	}

	if decoded.Status != 1 || decoded.Product.ProductName == "" {
		return service.BarcodeProduct{Found: false}, nil
	}

	return service.BarcodeProduct{
		Found:    true,
		Name:     decoded.Product.ProductName,
		Brand:    firstBrand(decoded.Product.Brands),
		Quantity: decoded.Product.Quantity,
	}, nil
}

// firstBrand picks the first entry of the comma-separated brands field.
func firstBrand(brands string) string {
	if idx := strings.Index(brands, ","); idx >= 0 {
		brands = brands[:idx]
	}
	return strings.TrimSpace(brands)
}
