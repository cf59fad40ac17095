package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/orders-service/internal/pkg/telemetry"
)

func TestAttachRequestMetadata_LogsCarryIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "handling request")
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequestID(AttachRequestMetadata(inner))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(HeaderXIdempotencyKey, "order-create-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotEmpty(t, record["request_id"])
	assert.Equal(t, "order-create-42", record["idempotency_key"])
}

func TestAttachRequestMetadata_NoIdempotencyHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "handling request")
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequestID(AttachRequestMetadata(inner))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "idempotency_key")
}
