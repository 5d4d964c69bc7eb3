package orderitem

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/product"
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order with title and price captured at order time.
// Product is the live catalog entry when it still resolves.
type OrderItem struct {
	ID           uuid.UUID        `json:"id"`
	OrderID      uuid.UUID        `json:"orderId"`
	ProductID    uuid.UUID        `json:"productId"`
	ProductTitle string           `json:"productTitle"`
	UnitPrice    decimal.Decimal  `json:"unitPrice"`
	Quantity     int              `json:"quantity"`
	CreatedAt    time.Time        `json:"createdAt"`
	Product      *product.Product `json:"product,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
