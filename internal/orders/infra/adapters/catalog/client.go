// Package catalog implements ports.ProductCatalog against the remote
// product catalog's HTTP API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
	"github.com/microcommerce/orders-service/internal/pkg/cache"
	"github.com/microcommerce/orders-service/internal/pkg/metrics"
	"github.com/microcommerce/orders-service/internal/pkg/patterns"
)

// snapshotTTL bounds how stale a cached product snapshot may be. Prices for
// new orders always come from this window, so it stays short.
const snapshotTTL = 30 * time.Second

type productDTO struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Client is the HTTP adapter for the product catalog. Calls go through a
// circuit breaker; resolved products are cached per id so bursts of order
// reads do not hammer the catalog.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	cache   cache.Cache // nil-safe: caching skipped if nil
}

var _ ports.ProductCatalog = (*Client)(nil)

// New builds a catalog client for the given base URL. cache may be nil.
func New(baseURL string, timeout time.Duration, c cache.Cache) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0), // failures surface immediately, retry policy is not ours
		breaker: patterns.NewCircuitBreaker("catalog"),
		cache:   c,
	}
}

// FetchByIDs resolves products in a single round trip, serving what it can
// from the snapshot cache first. Ids the catalog does not know are simply
// absent from the result.
func (c *Client) FetchByIDs(ctx context.Context, ids []int) ([]entity.Product, error) {
	products, missing := c.fromCache(ctx, ids)
	if len(missing) == 0 {
		return products, nil
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var dtos []productDTO
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(missing).
			SetResult(&dtos).
			Post("/products/validate")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("catalog responded %s", resp.Status())
		}
		return dtos, nil
	})
	metrics.UpstreamDuration.WithLabelValues("catalog").Observe(time.Since(start).Seconds())

	if err != nil {
		slog.ErrorContext(ctx, "product catalog call failed", "error", err, "ids", missing)
		return nil, fmt.Errorf("%w: product catalog: %v", entity.ErrUpstreamUnavailable, err)
	}

	for _, dto := range result.([]productDTO) {
		product := entity.Product{
			ID:        dto.ID,
			Name:      dto.Name,
			Price:     dto.Price,
			Available: dto.Available,
			CreatedAt: dto.CreatedAt,
			UpdatedAt: dto.UpdatedAt,
		}
		products = append(products, product)
		c.toCache(ctx, product)
	}
	return products, nil
}

// fromCache splits the requested ids into cached snapshots and misses.
func (c *Client) fromCache(ctx context.Context, ids []int) ([]entity.Product, []int) {
	if c.cache == nil {
		return nil, ids
	}

	var products []entity.Product
	var missing []int
	for _, id := range ids {
		raw, err := c.cache.Get(ctx, c.cache.GenerateKey("product", fmt.Sprint(id)))
		if err != nil || raw == "" {
			missing = append(missing, id)
			continue
		}
		var product entity.Product
		if err := json.Unmarshal([]byte(raw), &product); err != nil {
			missing = append(missing, id)
			continue
		}
		products = append(products, product)
	}
	return products, missing
}

func (c *Client) toCache(ctx context.Context, product entity.Product) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	key := c.cache.GenerateKey("product", fmt.Sprint(product.ID))
	if err := c.cache.Set(ctx, key, string(raw), snapshotTTL); err != nil {
		slog.WarnContext(ctx, "product snapshot cache write failed", "product_id", product.ID, "error", err)
	}
}
