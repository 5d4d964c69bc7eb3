package draft

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a partially filled checkout line.
type Item struct {
	ProductID    *uuid.UUID       `json:"productId,omitempty"`
	ProductTitle string           `json:"productTitle,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unitPrice,omitempty"`
	Quantity     int              `json:"quantity,omitempty"`
}

// Data is the checkout form as typed so far. Every field is optional.
type Data struct {
	CustomerName   string           `json:"customerName,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Address        string           `json:"address,omitempty"`
	Zone           string           `json:"zone,omitempty"`
	Items          []Item           `json:"items,omitempty"`
	DeliveryCharge *decimal.Decimal `json:"deliveryCharge,omitempty"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	TotalAmount    *decimal.Decimal `json:"totalAmount,omitempty"`
	OrderNote      string           `json:"orderNote,omitempty"`
}

// Draft is an in-progress or abandoned checkout.
type Draft struct {
	ID        uuid.UUID `json:"id"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
