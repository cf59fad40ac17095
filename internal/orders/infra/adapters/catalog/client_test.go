package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
)

// memoryCache is an in-process cache.Cache for tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return "orders:" + operation + ":" + key
}

func catalogServer(t *testing.T, hits *int, products map[int]productDTO) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/products/validate", r.URL.Path)
		*hits++

		var ids []int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))

		out := make([]productDTO, 0, len(ids))
		for _, id := range ids {
			if p, ok := products[id]; ok {
				out = append(out, p)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
}

func TestClient_FetchByIDs(t *testing.T) {
	hits := 0
	srv := catalogServer(t, &hits, map[int]productDTO{
		1: {ID: 1, Name: "Keyboard", Price: 10.00, Available: true},
		2: {ID: 2, Name: "Mouse", Price: 5.00, Available: true},
	})
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)

	products, err := client.FetchByIDs(context.Background(), []int{1, 2, 99})

	require.NoError(t, err)
	// Unresolvable ids are absent, not errors: the caller decides.
	require.Len(t, products, 2)
	assert.Equal(t, "Keyboard", products[0].Name)
	assert.Equal(t, 10.00, products[0].Price)
	assert.Equal(t, 1, hits)
}

func TestClient_FetchByIDs_ServesFromCache(t *testing.T) {
	hits := 0
	srv := catalogServer(t, &hits, map[int]productDTO{
		1: {ID: 1, Name: "Keyboard", Price: 10.00, Available: true},
	})
	defer srv.Close()

	client := New(srv.URL, time.Second, newMemoryCache())

	first, err := client.FetchByIDs(context.Background(), []int{1})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := client.FetchByIDs(context.Background(), []int{1})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])

	// The second call was a cache hit.
	assert.Equal(t, 1, hits)
}

func TestClient_FetchByIDs_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)

	_, err := client.FetchByIDs(context.Background(), []int{1})

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}

func TestClient_FetchByIDs_UnreachableCatalog(t *testing.T) {
	// Closed server: the dial fails immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, 200*time.Millisecond, nil)

	_, err := client.FetchByIDs(context.Background(), []int{1})

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}
