package iproductrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/product"
)

// IProductRepository resolves catalog products. Unknown ids are absent from the result.
type IProductRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]product.Product, error)
}
