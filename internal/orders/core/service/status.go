package service

import (
	"context"
	"log/slog"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

// OrderStatusManager applies status transitions. The machine is permissive:
// any status may follow any other, the only guard being an idempotent no-op
// when the order already has the requested status.
type OrderStatusManager struct {
	store ports.OrderStore
}

func NewOrderStatusManager(store ports.OrderStore) *OrderStatusManager {
	return &OrderStatusManager{store: store}
}

// ChangeStatus moves the order to the requested status and returns the
// updated order. Repeating the same transition returns the unchanged order
// without touching the store.
func (m *OrderStatusManager) ChangeStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	order, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}

	updated, err := m.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status changed",
		"order_id", id,
		"from", string(order.Status),
		"to", string(status),
	)
	return updated, nil
}
