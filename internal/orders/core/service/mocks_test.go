package service

import (
	"context"
	"sync"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"
)

// mockOrderStore is an in-memory ports.OrderStore that records calls so
// tests can assert what was (and was not) persisted.
type mockOrderStore struct {
	mu     sync.Mutex
	orders map[string]*entity.Order

	CreateCalls       []*entity.Order
	CreateErr         error
	ListTotal         int
	ListErr           error
	UpdateStatusCalls int
	ApplyPaymentCalls []ports.Payment
	ApplyPaymentErr   error
}

var _ ports.OrderStore = (*mockOrderStore)(nil)

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[string]*entity.Order)}
}

func (m *mockOrderStore) put(order *entity.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *mockOrderStore) Create(ctx context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, order)
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderStore) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	cp := *order
	cp.Items = append([]entity.OrderItem(nil), order.Items...)
	return &cp, nil
}

func (m *mockOrderStore) List(ctx context.Context, filter ports.ListFilter) ([]entity.Order, int, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matching := make([]entity.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matching = append(matching, *o)
	}
	total := m.ListTotal
	if total == 0 {
		total = len(matching)
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matching) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], total, nil
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateStatusCalls++
	order, ok := m.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	order.Status = status
	cp := *order
	return &cp, nil
}

func (m *mockOrderStore) ApplyPayment(ctx context.Context, payment ports.Payment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyPaymentCalls = append(m.ApplyPaymentCalls, payment)
	if m.ApplyPaymentErr != nil {
		return false, m.ApplyPaymentErr
	}
	order, ok := m.orders[payment.OrderID]
	if !ok {
		return false, entity.ErrOrderNotFound
	}
	if order.Paid {
		return false, nil
	}
	paidAt := payment.PaidAt
	chargeID := payment.ChargeID
	order.Paid = true
	order.PaidAt = &paidAt
	order.StripeChargeID = &chargeID
	order.Status = entity.StatusPaid
	order.Receipt = &entity.OrderReceipt{
		OrderID:    order.ID,
		ReceiptURL: payment.ReceiptURL,
		CreatedAt:  paidAt,
	}
	return true, nil
}

// mockCatalog is a canned ports.ProductCatalog.
type mockCatalog struct {
	Products   []entity.Product
	Err        error
	FetchCalls [][]int
}

var _ ports.ProductCatalog = (*mockCatalog)(nil)

func (m *mockCatalog) FetchByIDs(ctx context.Context, ids []int) ([]entity.Product, error) {
	m.FetchCalls = append(m.FetchCalls, ids)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Products, nil
}

// mockGateway is a canned ports.PaymentGateway.
type mockGateway struct {
	Session      *entity.PaymentSession
	Err          error
	CreateOrders []*entity.Order
}

var _ ports.PaymentGateway = (*mockGateway)(nil)

func (m *mockGateway) CreateSession(ctx context.Context, order *entity.Order) (*entity.PaymentSession, error) {
	m.CreateOrders = append(m.CreateOrders, order)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}
