package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/pkg/metrics"
)

// paymentApplier is the slice of the payment coordinator this listener needs.
type paymentApplier interface {
	ApplyPayment(ctx context.Context, confirmation entity.PaymentConfirmation) error
}

// paymentSucceededEvent is the wire shape of a gateway confirmation.
type paymentSucceededEvent struct {
	StripePaymentID string `json:"stripePaymentId"`
	OrderID         string `json:"orderId"`
	ReceiptURL      string `json:"receiptUrl"`
}

// PaymentListener applies payment.succeeded events to orders.
type PaymentListener struct {
	coordinator paymentApplier
}

func NewPaymentListener(coordinator paymentApplier) *PaymentListener {
	return &PaymentListener{coordinator: coordinator}
}

// HandleMessage decodes one confirmation event and applies it. Malformed
// payloads are logged and skipped: redelivering them cannot help.
func (l *PaymentListener) HandleMessage(ctx context.Context, key, value []byte) error {
	var event paymentSucceededEvent
	if err := json.Unmarshal(value, &event); err != nil {
		slog.ErrorContext(ctx, "dropping malformed payment confirmation", "key", string(key), "error", err)
		metrics.PaymentsAppliedTotal.WithLabelValues("malformed").Inc()
		return nil
	}
	if event.OrderID == "" || event.StripePaymentID == "" {
		slog.ErrorContext(ctx, "dropping incomplete payment confirmation", "order_id", event.OrderID)
		metrics.PaymentsAppliedTotal.WithLabelValues("malformed").Inc()
		return nil
	}

	err := l.coordinator.ApplyPayment(ctx, entity.PaymentConfirmation{
		StripePaymentID: event.StripePaymentID,
		OrderID:         event.OrderID,
		ReceiptURL:      event.ReceiptURL,
	})
	if err != nil {
		metrics.PaymentsAppliedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("apply confirmation for order %s: %w", event.OrderID, err)
	}

	metrics.PaymentsAppliedTotal.WithLabelValues("applied").Inc()
	return nil
}
