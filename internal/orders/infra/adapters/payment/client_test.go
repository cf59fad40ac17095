package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
)

func TestClient_CreateSession(t *testing.T) {
	var got sessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payment-sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(sessionResponse{
			ID:  "cs_123",
			URL: "https://pay.example/cs_123",
		}))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	order := &entity.Order{
		ID: "ord-1",
		Items: []entity.OrderItem{
			{ProductID: 1, Quantity: 2, Price: 10.00},
			{ProductID: 2, Quantity: 1, Price: 5.00},
		},
	}

	session, err := client.CreateSession(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://pay.example/cs_123", session.URL)

	assert.Equal(t, "ord-1", got.OrderID)
	assert.Equal(t, "usd", got.Currency)
	// productId is stripped from the gateway payload.
	require.Len(t, got.Items, 2)
	assert.Equal(t, sessionItem{Quantity: 2, Price: 10.00}, got.Items[0])
	assert.Equal(t, sessionItem{Quantity: 1, Price: 5.00}, got.Items[1])
}

func TestClient_CreateSession_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)

	_, err := client.CreateSession(context.Background(), &entity.Order{ID: "ord-1"})

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}
