package ports

import (
	"context"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
)

// ProductCatalog is the port to the remote product catalog service.
type ProductCatalog interface {
	// FetchByIDs resolves a non-empty set of distinct product ids in a
	// single round trip. Ids with no matching record are simply absent from
	// the result; the caller decides what an absent product means. A call
	// that cannot complete fails with entity.ErrUpstreamUnavailable.
	FetchByIDs(ctx context.Context, ids []int) ([]entity.Product, error)
}
