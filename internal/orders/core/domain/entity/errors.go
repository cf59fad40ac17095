package entity

import "errors"

// Sentinel errors for the order core. Lower layers wrap these with context
// via fmt.Errorf("...: %w", err); the HTTP boundary matches them with
// errors.Is and maps them to status codes, keeping internal detail out of
// client-visible messages.
var (
	// ErrOrderNotFound — the requested order id has no matching record.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderCreationFailed — an item references a product absent from the
	// catalog snapshot, or the input items are invalid.
	ErrOrderCreationFailed = errors.New("order creation failed")

	// ErrUpstreamUnavailable — the product catalog or payment gateway call
	// could not complete.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
