package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

func TestOrderQueryService_FindOne_DenormalizesNames(t *testing.T) {
	store := newMockOrderStore()
	store.put(&entity.Order{
		ID:     "ord-1",
		Status: entity.StatusPending,
		Items: []entity.OrderItem{
			{ProductID: 1, Quantity: 2, Price: 10.00},
			{ProductID: 2, Quantity: 1, Price: 5.00},
		},
	})
	catalog := catalogWith(
		entity.Product{ID: 1, Name: "Keyboard"},
		entity.Product{ID: 2, Name: "Mouse"},
	)
	query := NewOrderQueryService(store, catalog)

	order, err := query.FindOne(context.Background(), "ord-1")

	require.NoError(t, err)
	assert.Equal(t, "Keyboard", order.Items[0].ProductName)
	assert.Equal(t, "Mouse", order.Items[1].ProductName)
	require.Len(t, catalog.FetchCalls, 1)
	assert.Equal(t, []int{1, 2}, catalog.FetchCalls[0])
}

func TestOrderQueryService_FindOne_NotFound(t *testing.T) {
	query := NewOrderQueryService(newMockOrderStore(), catalogWith())

	_, err := query.FindOne(context.Background(), "missing")

	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
}

func TestOrderQueryService_FindOne_CatalogDownFailsRead(t *testing.T) {
	store := newMockOrderStore()
	store.put(&entity.Order{
		ID:    "ord-1",
		Items: []entity.OrderItem{{ProductID: 1, Quantity: 1, Price: 1.00}},
	})
	catalog := &mockCatalog{Err: entity.ErrUpstreamUnavailable}
	query := NewOrderQueryService(store, catalog)

	_, err := query.FindOne(context.Background(), "ord-1")

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}

func TestOrderQueryService_FindAll_PaginationMeta(t *testing.T) {
	store := newMockOrderStore()
	for i := 0; i < 15; i++ {
		store.put(&entity.Order{ID: fmt.Sprintf("ord-%02d", i), Status: entity.StatusPending})
	}
	query := NewOrderQueryService(store, catalogWith())

	status := entity.StatusPending
	page, err := query.FindAll(context.Background(), ports.ListFilter{
		Status: &status,
		Page:   2,
		Limit:  10,
	})

	require.NoError(t, err)
	assert.Equal(t, 15, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.Page)
	assert.Equal(t, 2, page.Meta.LastPage)
	assert.Len(t, page.Data, 5)
}

func TestOrderQueryService_FindAll_Defaults(t *testing.T) {
	store := newMockOrderStore()
	for i := 0; i < 12; i++ {
		store.put(&entity.Order{ID: fmt.Sprintf("ord-%02d", i), Status: entity.StatusPending})
	}
	query := NewOrderQueryService(store, catalogWith())

	page, err := query.FindAll(context.Background(), ports.ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 2, page.Meta.LastPage)
	assert.LessOrEqual(t, len(page.Data), 10)
}

func TestOrderQueryService_FindAll_LastPageMath(t *testing.T) {
	tests := []struct {
		total, limit, lastPage int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{15, 10, 2},
		{21, 7, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d limit=%d", tt.total, tt.limit), func(t *testing.T) {
			store := newMockOrderStore()
			store.ListTotal = tt.total
			query := NewOrderQueryService(store, catalogWith())

			page, err := query.FindAll(context.Background(), ports.ListFilter{Page: 1, Limit: tt.limit})

			require.NoError(t, err)
			assert.Equal(t, tt.lastPage, page.Meta.LastPage)
		})
	}
}
