package service

import (
	"context"
	"fmt"
	"math"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// OrderQueryService serves the read paths: single-order lookup enriched with
// current product names, and paginated listing of order headers.
type OrderQueryService struct {
	store   ports.OrderStore
	catalog ports.ProductCatalog
}

func NewOrderQueryService(store ports.OrderStore, catalog ports.ProductCatalog) *OrderQueryService {
	return &OrderQueryService{store: store, catalog: catalog}
}

// FindOne returns the order with its items, each item carrying the product's
// current catalog name. Prices and quantities are the historical captured
// values; only the display name is re-fetched, so a catalog outage fails the
// read even though the order itself is local.
func (q *OrderQueryService) FindOne(ctx context.Context, id string) (*entity.Order, error) {
	order, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return order, nil
	}

	ids := make([]int, 0, len(order.Items))
	seen := make(map[int]struct{}, len(order.Items))
	for _, it := range order.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := q.catalog.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve product names for order %s: %w", id, err)
	}
	byID := indexProducts(products)
	for i := range order.Items {
		// A product renamed since purchase shows its current name; one
		// deleted from the catalog keeps an empty name rather than failing
		// the whole read.
		order.Items[i].ProductName = byID[order.Items[i].ProductID].Name
	}
	return order, nil
}

// FindAll returns one page of order headers matching the optional status
// filter, with pagination metadata. Zero page/limit fall back to the
// defaults (1 and 10); negative values are the boundary's job to reject.
func (q *OrderQueryService) FindAll(ctx context.Context, filter ports.ListFilter) (*entity.OrderPage, error) {
	if filter.Page == 0 {
		filter.Page = defaultPage
	}
	if filter.Limit == 0 {
		filter.Limit = defaultLimit
	}
	if filter.Page < 0 || filter.Limit < 0 {
		return nil, fmt.Errorf("page and limit must be positive, got page=%d limit=%d", filter.Page, filter.Limit)
	}

	orders, total, err := q.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &entity.OrderPage{
		Data: orders,
		Meta: entity.PageMeta{
			Total:    total,
			Page:     filter.Page,
			LastPage: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}
