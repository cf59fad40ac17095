package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/microcommerce/orders-service/internal/orders/infra/httpx/middlewares"
	"github.com/microcommerce/orders-service/internal/pkg/metrics"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(metrics.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{id}", handler.GetOrder)
	r.Patch("/orders/{id}/status", handler.ChangeStatus)
	r.Post("/orders/{id}/payment-session", handler.CreatePaymentSession)
	r.Post("/payments/confirmations", handler.ConfirmPayment)

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
