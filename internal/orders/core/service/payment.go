package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

// PaymentCoordinator opens payment sessions for existing orders and applies
// payment confirmations to the order record.
type PaymentCoordinator struct {
	store   ports.OrderStore
	gateway ports.PaymentGateway
}

func NewPaymentCoordinator(store ports.OrderStore, gateway ports.PaymentGateway) *PaymentCoordinator {
	return &PaymentCoordinator{store: store, gateway: gateway}
}

// CreateSession loads the order and asks the gateway to open a payment
// session for it, returning the gateway's reference verbatim.
func (c *PaymentCoordinator) CreateSession(ctx context.Context, orderID string) (*entity.PaymentSession, error) {
	order, err := c.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	session, err := c.gateway.CreateSession(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create payment session for order %s: %w", orderID, err)
	}

	slog.InfoContext(ctx, "payment session created", "order_id", orderID, "session_id", session.ID)
	return session, nil
}

// ApplyPayment records a payment confirmation: in one store transaction the
// order becomes PAID, the charge reference and paid-at timestamp are set,
// and exactly one receipt is created.
//
// Confirmations arrive over at-least-once transport, so a repeated
// confirmation for an already-paid order is accepted as a no-op success
// instead of re-applying the update or minting a second receipt.
func (c *PaymentCoordinator) ApplyPayment(ctx context.Context, confirmation entity.PaymentConfirmation) error {
	applied, err := c.store.ApplyPayment(ctx, ports.Payment{
		OrderID:    confirmation.OrderID,
		ChargeID:   confirmation.StripePaymentID,
		ReceiptURL: confirmation.ReceiptURL,
		PaidAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("apply payment to order %s: %w", confirmation.OrderID, err)
	}

	if !applied {
		slog.WarnContext(ctx, "duplicate payment confirmation ignored",
			"order_id", confirmation.OrderID,
			"charge_id", confirmation.StripePaymentID,
		)
		return nil
	}

	slog.InfoContext(ctx, "payment applied",
		"order_id", confirmation.OrderID,
		"charge_id", confirmation.StripePaymentID,
	)
	return nil
}
