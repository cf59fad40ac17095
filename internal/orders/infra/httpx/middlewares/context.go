package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/microcommerce/orders-service/internal/pkg/telemetry"
)

const HeaderXIdempotencyKey = "x-idempotency-key"

// AttachRequestMetadata stores the chi request ID and the caller-supplied
// idempotency key in the request context so telemetry.ContextHandler stamps
// them onto every log record emitted while handling the request.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := telemetry.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ctx = telemetry.WithIdempotencyKey(ctx, r.Header.Get(HeaderXIdempotencyKey))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
