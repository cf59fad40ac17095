// Package service implements the order orchestration core: creation,
// queries, status transitions, and payment coordination. Every component
// holds its collaborators as ports (constructor injection); nothing here
// talks to the network or the database directly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

// NewOrderItem is one requested line of a new order.
type NewOrderItem struct {
	ProductID int
	Quantity  int
}

// OrderAggregator orchestrates order creation: it validates and prices the
// requested items against the remote catalog, computes totals, and persists
// the order atomically.
type OrderAggregator struct {
	store   ports.OrderStore
	catalog ports.ProductCatalog
}

func NewOrderAggregator(store ports.OrderStore, catalog ports.ProductCatalog) *OrderAggregator {
	return &OrderAggregator{store: store, catalog: catalog}
}

// Create builds and persists an order from the requested items.
//
// Prices are captured from the catalog snapshot fetched here and never
// re-derived afterwards. If any item references a product the catalog does
// not resolve, the whole operation fails and nothing is persisted. Duplicate
// product ids are allowed: they become separate line items priced from the
// same snapshot.
func (a *OrderAggregator) Create(ctx context.Context, items []NewOrderItem) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", entity.ErrOrderCreationFailed)
	}
	for _, it := range items {
		// The DTO layer validates quantities too, but the aggregator is the
		// last line of defense before money math.
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: non-positive quantity %d for product %d",
				entity.ErrOrderCreationFailed, it.Quantity, it.ProductID)
		}
	}

	products, err := a.catalog.FetchByIDs(ctx, distinctProductIDs(items))
	if err != nil {
		return nil, fmt.Errorf("validate products: %w", err)
	}
	byID := indexProducts(products)

	order := &entity.Order{
		ID:     uuid.NewString(),
		Status: entity.StatusPending,
		Items:  make([]entity.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		product, ok := byID[it.ProductID]
		if !ok {
			slog.WarnContext(ctx, "order rejected, product not in catalog", "product_id", it.ProductID)
			return nil, fmt.Errorf("%w: product %d not found in catalog", entity.ErrOrderCreationFailed, it.ProductID)
		}
		order.Items = append(order.Items, entity.OrderItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Price:       product.Price,
			ProductName: product.Name,
		})
		order.TotalAmount += product.Price * float64(it.Quantity)
		order.TotalItems += it.Quantity
	}

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := a.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"total_amount", order.TotalAmount,
		"total_items", order.TotalItems,
	)
	return order, nil
}

// distinctProductIDs collapses the requested items to the unique set of
// product ids, preserving first-seen order.
func distinctProductIDs(items []NewOrderItem) []int {
	seen := make(map[int]struct{}, len(items))
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

func indexProducts(products []entity.Product) map[int]entity.Product {
	byID := make(map[int]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
