package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product holds the catalog display fields of a product.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail"`
}
