package httpx

import "time"

type CreateOrderRequest struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type PaymentConfirmationRequest struct {
	StripePaymentID string `json:"stripePaymentId"`
	OrderID         string `json:"orderId"`
	ReceiptURL      string `json:"receiptUrl"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Status         string              `json:"status"`
	TotalAmount    float64             `json:"totalAmount"`
	TotalItems     int                 `json:"totalItems"`
	Paid           bool                `json:"paid"`
	PaidAt         *time.Time          `json:"paidAt,omitempty"`
	StripeChargeID *string             `json:"stripeChargeId,omitempty"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	Receipt        *ReceiptResponse    `json:"receipt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductID   int     `json:"productId"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"productName,omitempty"`
}

type ReceiptResponse struct {
	ReceiptURL string    `json:"receiptUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderListResponse struct {
	Data []OrderResponse `json:"data"`
	Meta PageMetaDTO     `json:"meta"`
}

type PageMetaDTO struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"lastPage"`
}

type PaymentSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
