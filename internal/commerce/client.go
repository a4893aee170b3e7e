// Package commerce provides the REST client for the commerce backend's store
// API. The client is constructed explicitly and injected into whatever needs
// it; no package-level instance exists.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/abgdnv/storefront/internal/availability"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
)

var ErrNotFound = errors.New("resource not found")

const apiKeyHeader = "x-publishable-api-key"

// Client talks to the commerce backend over HTTP. All calls go through a
// circuit breaker so a failing backend sheds load quickly.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewClient creates a commerce backend client from the given configuration.
func NewClient(cfg config.BackendConfig, logger *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "commerce-backend-cb",
		MaxRequests: 3,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.Breaker.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// Not-found is a legitimate answer, not a backend failure.
			return err == nil || errors.Is(err, ErrNotFound)
		},
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger.With("component", "commerce"),
	}
}

// VariantInventory implements availability.VariantLookup.
// Returns nil for unknown variants.
func (c *Client) VariantInventory(ctx context.Context, variantID string) (*availability.VariantInventory, error) {
	data, err := c.do(ctx, http.MethodGet, "/store/variants/"+url.PathEscape(variantID), nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variant %s: %w", variantID, err)
	}

	var payload struct {
		Variant struct {
			ManageInventory   bool   `json:"manage_inventory"`
			InventoryQuantity *int64 `json:"inventory_quantity"`
		} `json:"variant"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode variant response: %w", err)
	}
	return &availability.VariantInventory{
		ManageInventory:   payload.Variant.ManageInventory,
		InventoryQuantity: payload.Variant.InventoryQuantity,
	}, nil
}

// CartLines implements availability.CartLookup.
// An unknown cart yields no lines.
func (c *Client) CartLines(ctx context.Context, cartID string) ([]availability.CartLine, error) {
	data, err := c.do(ctx, http.MethodGet, "/store/carts/"+url.PathEscape(cartID), nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart %s: %w", cartID, err)
	}

	var payload struct {
		Cart struct {
			Items []struct {
				ID        string `json:"id"`
				VariantID string `json:"variant_id"`
				Quantity  int64  `json:"quantity"`
			} `json:"items"`
		} `json:"cart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode cart response: %w", err)
	}

	lines := make([]availability.CartLine, 0, len(payload.Cart.Items))
	for _, item := range payload.Cart.Items {
		lines = append(lines, availability.CartLine{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// ProductByHandle fetches a product with its options, variants and calculated
// prices. Returns ErrNotFound when no product matches the handle.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*catalog.Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/store/products?handle="+url.QueryEscape(handle), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", handle, err)
	}

	var payload struct {
		Products []wireProduct `json:"products"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	if len(payload.Products) == 0 {
		return nil, ErrNotFound
	}
	return toProduct(payload.Products[0]), nil
}

// AddLine implements cart.Mutator.
func (c *Client) AddLine(ctx context.Context, cartID, variantID string, quantity int64) error {
	body := map[string]any{"variant_id": variantID, "quantity": quantity}
	if _, err := c.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/line-items", body); err != nil {
		return fmt.Errorf("failed to add line to cart %s: %w", cartID, err)
	}
	return nil
}

// UpdateLine implements cart.Mutator.
func (c *Client) UpdateLine(ctx context.Context, cartID, lineID string, quantity int64) error {
	body := map[string]any{"quantity": quantity}
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if _, err := c.do(ctx, http.MethodPost, path, body); err != nil {
		return fmt.Errorf("failed to update line %s in cart %s: %w", lineID, cartID, err)
	}
	return nil
}

// DeleteLine implements cart.Mutator.
func (c *Client) DeleteLine(ctx context.Context, cartID, lineID string) error {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("failed to delete line %s from cart %s: %w", lineID, cartID, err)
	}
	return nil
}

// do performs one backend request through the circuit breaker and returns the
// response body. Non-2xx statuses are errors; 404 maps to ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var body io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request payload: %w", err)
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("backend request failed: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.logger.Warn("Failed to close response body", "error", err)
			}
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode >= 300:
			return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return data, nil
	})
}

// wireProduct is the backend's product shape.
type wireProduct struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	Options  []struct {
		Title  string `json:"title"`
		Values []struct {
			Value string `json:"value"`
		} `json:"values"`
	} `json:"options"`
	Variants []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Options []struct {
			Value  string `json:"value"`
			Option struct {
				Title string `json:"title"`
			} `json:"option"`
		} `json:"options"`
		ManageInventory   bool   `json:"manage_inventory"`
		InventoryQuantity *int64 `json:"inventory_quantity"`
		CalculatedPrice   *struct {
			CalculatedAmount *float64 `json:"calculated_amount"`
			CurrencyCode     string   `json:"currency_code"`
		} `json:"calculated_price"`
	} `json:"variants"`
}

// toProduct converts the wire shape into the catalog model. A price is set
// only when the backend reports a numeric calculated amount; a zero price is
// never fabricated.
func toProduct(p wireProduct) *catalog.Product {
	options := make([]catalog.ProductOption, 0, len(p.Options))
	for _, o := range p.Options {
		values := make([]string, 0, len(o.Values))
		for _, v := range o.Values {
			values = append(values, v.Value)
		}
		options = append(options, catalog.ProductOption{Title: o.Title, Values: values})
	}

	variants := make([]catalog.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variantOptions := make([]catalog.OptionValue, 0, len(v.Options))
		for _, o := range v.Options {
			variantOptions = append(variantOptions, catalog.OptionValue{Title: o.Option.Title, Value: o.Value})
		}
		var price *catalog.Money
		if v.CalculatedPrice != nil && v.CalculatedPrice.CalculatedAmount != nil {
			price = &catalog.Money{
				Amount:       *v.CalculatedPrice.CalculatedAmount,
				CurrencyCode: v.CalculatedPrice.CurrencyCode,
			}
		}
		variants = append(variants, catalog.Variant{
			ID:                v.ID,
			Title:             v.Title,
			Options:           variantOptions,
			ManageInventory:   v.ManageInventory,
			InventoryQuantity: v.InventoryQuantity,
			CalculatedPrice:   price,
		})
	}

	return &catalog.Product{
		ID:       p.ID,
		Handle:   p.Handle,
		Title:    p.Title,
		Options:  options,
		Variants: variants,
	}
}
