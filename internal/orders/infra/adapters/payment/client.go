// Package payment implements ports.PaymentGateway against the remote
// payment gateway's HTTP API.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
	"github.com/microcommerce/orders-service/internal/pkg/metrics"
	"github.com/microcommerce/orders-service/internal/pkg/patterns"
)

// currency is the single currency this deployment charges in.
const currency = "usd"

type sessionRequest struct {
	OrderID  string        `json:"orderId"`
	Currency string        `json:"currency"`
	Items    []sessionItem `json:"items"`
}

// sessionItem deliberately strips productId: the gateway only needs the
// amounts to collect.
type sessionItem struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client is the HTTP adapter for the payment gateway.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

var _ ports.PaymentGateway = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
		breaker: patterns.NewCircuitBreaker("payment-gateway"),
	}
}

// CreateSession opens a payment session for the order and returns the
// gateway's reference verbatim.
func (c *Client) CreateSession(ctx context.Context, order *entity.Order) (*entity.PaymentSession, error) {
	payload := sessionRequest{
		OrderID:  order.ID,
		Currency: currency,
		Items:    make([]sessionItem, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		payload.Items = append(payload.Items, sessionItem{Quantity: it.Quantity, Price: it.Price})
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var session sessionResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			SetResult(&session).
			Post("/payment-sessions")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("payment gateway responded %s", resp.Status())
		}
		return &session, nil
	})
	metrics.UpstreamDuration.WithLabelValues("payment-gateway").Observe(time.Since(start).Seconds())

	if err != nil {
		slog.ErrorContext(ctx, "payment gateway call failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: payment gateway: %v", entity.ErrUpstreamUnavailable, err)
	}

	session := result.(*sessionResponse)
	return &entity.PaymentSession{ID: session.ID, URL: session.URL}, nil
}
