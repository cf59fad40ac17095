package ports

import (
	"context"
	"time"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
)

// ListFilter narrows and pages an order listing. Status nil means all
// statuses. Page and Limit are 1-based and must be positive.
type ListFilter struct {
	Status *entity.OrderStatus
	Page   int
	Limit  int
}

// Payment carries the fields written when a payment confirmation is applied.
type Payment struct {
	OrderID    string
	ChargeID   string
	ReceiptURL string
	PaidAt     time.Time
}

// OrderStore is the persistence port for orders. It is the single writer of
// order state and must be safe for concurrent use.
type OrderStore interface {
	// Create persists the order header and all its items in one
	// transaction: either everything is written, or nothing is.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID returns the order with its items and receipt, or
	// entity.ErrOrderNotFound.
	FindByID(ctx context.Context, id string) (*entity.Order, error)

	// List returns one page of order headers (no items) matching the filter
	// plus the total matching count.
	List(ctx context.Context, filter ListFilter) ([]entity.Order, int, error)

	// UpdateStatus atomically sets the order's status and returns the
	// updated header, or entity.ErrOrderNotFound.
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error)

	// ApplyPayment marks the order paid and creates its receipt in one
	// transaction, but only if the order is not already paid. It reports
	// whether the update was applied: (false, nil) means the order was
	// already paid and nothing changed. Returns entity.ErrOrderNotFound if
	// the order does not exist.
	ApplyPayment(ctx context.Context, payment Payment) (bool, error)
}
