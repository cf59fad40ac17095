package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
	"github.com/microcommerce/orders-service/internal/orders/core/service"
	"github.com/microcommerce/orders-service/internal/pkg/metrics"
)

// Handler translates HTTP requests into order core operations and core
// errors back into status codes. Internal failure detail never reaches the
// response body: it is logged and replaced with a generic message.
type Handler struct {
	aggregator  *service.OrderAggregator
	query       *service.OrderQueryService
	status      *service.OrderStatusManager
	coordinator *service.PaymentCoordinator
}

func NewHandler(
	aggregator *service.OrderAggregator,
	query *service.OrderQueryService,
	status *service.OrderStatusManager,
	coordinator *service.PaymentCoordinator,
) *Handler {
	return &Handler{
		aggregator:  aggregator,
		query:       query,
		status:      status,
		coordinator: coordinator,
	}
}

// CreateOrder validates the request, prices it against the catalog, and
// persists the order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "items are required")
		return
	}

	items := make([]service.NewOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "productId and quantity must be positive")
			return
		}
		items = append(items, service.NewOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.aggregator.Create(r.Context(), items)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		h.respondError(w, r, err)
		return
	}

	metrics.OrdersTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// ListOrders returns one page of order headers.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	page, err := h.query.FindAll(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	data := make([]OrderResponse, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, mapOrderToResponse(&page.Data[i]))
	}
	writeJSON(w, http.StatusOK, OrderListResponse{
		Data: data,
		Meta: PageMetaDTO{
			Total:    page.Meta.Total,
			Page:     page.Meta.Page,
			LastPage: page.Meta.LastPage,
		},
	})
}

// GetOrder returns a single order with product names denormalized in.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.query.FindOne(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ChangeStatus moves an order to a new status.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	status, ok := entity.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown status "+req.Status)
		return
	}

	order, err := h.status.ChangeStatus(r.Context(), id, status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// CreatePaymentSession opens a payment session for an existing order.
func (h *Handler) CreatePaymentSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.coordinator.CreateSession(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PaymentSessionResponse{ID: session.ID, URL: session.URL})
}

// ConfirmPayment applies a payment confirmation delivered over HTTP (the
// same payload the Kafka listener consumes).
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.StripePaymentID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "stripePaymentId is required")
		return
	}
	if _, err := uuid.Parse(req.OrderID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "orderId must be a UUID")
		return
	}
	if u, err := url.ParseRequestURI(req.ReceiptURL); err != nil || u.Host == "" {
		writeError(w, http.StatusBadRequest, "invalid_receipt_url", "receiptUrl must be a valid URL")
		return
	}

	err := h.coordinator.ApplyPayment(r.Context(), entity.PaymentConfirmation{
		StripePaymentID: req.StripePaymentID,
		OrderID:         req.OrderID,
		ReceiptURL:      req.ReceiptURL,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps core errors onto status codes. Messages stay generic;
// the wrapped detail is only logged.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", "")
	case errors.Is(err, entity.ErrOrderCreationFailed):
		slog.WarnContext(r.Context(), "order creation rejected", "error", err)
		writeError(w, http.StatusBadRequest, "order_creation_failed", "order could not be created from the given items")
	case errors.Is(err, entity.ErrUpstreamUnavailable):
		slog.ErrorContext(r.Context(), "upstream unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "a dependent service is unavailable")
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func parseListFilter(query url.Values) (ports.ListFilter, error) {
	filter := ports.ListFilter{}

	if raw := query.Get("status"); raw != "" {
		status, ok := entity.ParseStatus(raw)
		if !ok {
			return filter, errors.New("unknown status " + raw)
		}
		filter.Status = &status
	}

	var err error
	if filter.Page, err = parsePositive(query.Get("page"), "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = parsePositive(query.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

// parsePositive parses an optional positive integer query parameter,
// returning 0 when absent so the query service applies its default.
func parsePositive(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}

func mapOrderToResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:             order.ID,
		Status:         string(order.Status),
		TotalAmount:    order.TotalAmount,
		TotalItems:     order.TotalItems,
		Paid:           order.Paid,
		PaidAt:         order.PaidAt,
		StripeChargeID: order.StripeChargeID,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Price:       it.Price,
			ProductName: it.ProductName,
		})
	}
	if order.Receipt != nil {
		resp.Receipt = &ReceiptResponse{
			ReceiptURL: order.Receipt.ReceiptURL,
			CreatedAt:  order.Receipt.CreatedAt,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
