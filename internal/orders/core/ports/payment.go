package ports

import (
	"context"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
)

// PaymentGateway is the port to the remote payment gateway.
type PaymentGateway interface {
	// CreateSession asks the gateway to open a payment collection for the
	// order and returns its session reference verbatim. Fails with
	// entity.ErrUpstreamUnavailable if the call cannot complete.
	CreateSession(ctx context.Context, order *entity.Order) (*entity.PaymentSession, error)
}
