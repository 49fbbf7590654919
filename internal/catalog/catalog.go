package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/transport"
)

// Client reads the product catalog from the order store. A failed read is
// answered with the seed catalog instead of an error: the fallback is the
// retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(storeURL string) *Client {
	return &Client{
		baseURL: storeURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Seed returns the fixed fallback catalog used when the store is
// unreachable.
func Seed() []transport.Product {
	return []transport.Product{
		{ID: "1", Name: "Laptop Gaming Pro", Price: 999.99, Stock: 50},
		{ID: "2", Name: "Smartphone X", Price: 699.99, Stock: 30},
		{ID: "3", Name: "Tablet Air", Price: 449.99, Stock: 25},
		{ID: "4", Name: "Monitor 4K", Price: 349.99, Stock: 15},
	}
}

// Fetch issues one GET /products. Transport errors, bad statuses and decode
// errors all degrade to the seed catalog; no retry is attempted.
func (c *Client) Fetch(ctx context.Context) []transport.Product {
	l := logging.FromContext(ctx).With("component", "catalog")

	products, err := c.fetch(ctx)
	if err != nil {
		l.Warn("catalog_fetch_failed", "reason", "falling back to seed catalog", "error", err)
		return Seed()
	}
	return products
}

func (c *Client) fetch(ctx context.Context) ([]transport.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch failed with status: %d", resp.StatusCode)
	}

	var products []transport.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return products, nil
}

// FindByName matches on the display name, case-sensitive and exact. Fuzzy
// or case-insensitive lookup is deliberately not supported.
func FindByName(products []transport.Product, name string) (transport.Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return transport.Product{}, false
}
