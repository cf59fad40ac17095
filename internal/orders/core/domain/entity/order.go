package entity

import "time"

// OrderStatus is the lifecycle state of an order. The set is open: new
// fulfilment states can be added without touching the transition code,
// which only guards against redundant updates.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// KnownStatuses lists every status accepted at the API boundary.
var KnownStatuses = []OrderStatus{StatusPending, StatusPaid, StatusDelivered, StatusCancelled}

// ParseStatus validates a raw status string against the known set.
func ParseStatus(s string) (OrderStatus, bool) {
	for _, st := range KnownStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Order is a purchase record with its line items. Items and their captured
// prices are immutable after creation; only status and the payment fields
// change afterwards.
type Order struct {
	ID             string
	Status         OrderStatus
	TotalAmount    float64
	TotalItems     int
	Paid           bool
	PaidAt         *time.Time
	StripeChargeID *string
	Items          []OrderItem
	Receipt        *OrderReceipt
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem is one priced, quantified product reference within an order.
// Price is the catalog price captured at creation time; it never tracks
// later catalog changes. ProductName is denormalized into responses from a
// fresh catalog read and is never stored.
type OrderItem struct {
	ProductID   int
	Quantity    int
	Price       float64
	ProductName string
}

// Subtotal returns the line total for this item.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderReceipt records a successful payment. An order has at most one.
type OrderReceipt struct {
	OrderID    string
	ReceiptURL string
	CreatedAt  time.Time
}

// Product is a point-in-time snapshot of a remote catalog record.
type Product struct {
	ID        int
	Name      string
	Price     float64
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentSession is the payment gateway's handle for an in-progress
// payment collection, returned to the caller verbatim.
type PaymentSession struct {
	ID  string
	URL string
}

// PaymentConfirmation is the event applied when the gateway reports a
// completed payment.
type PaymentConfirmation struct {
	StripePaymentID string
	OrderID         string
	ReceiptURL      string
}

// PageMeta describes the position of a page within a filtered listing.
type PageMeta struct {
	Total    int
	Page     int
	LastPage int
}

// OrderPage is one page of order headers plus pagination metadata.
type OrderPage struct {
	Data []Order
	Meta PageMeta
}
