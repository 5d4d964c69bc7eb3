package order

import (
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopspring/decimal"
)

// ItemInput is a checkout line: product and quantity. Title and price come from the catalog.
type ItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"  validate:"gte=1"`
}

// CreateModel carries a storefront checkout submission.
type CreateModel struct {
	CustomerName   string          `json:"customerName"   validate:"required"`
	Phone          string          `json:"phone"          validate:"required"`
	Address        string          `json:"address"        validate:"required"`
	Zone           zone.Zone       `json:"zone"           validate:"required,oneof=inside-metro outside-metro"`
	Items          []ItemInput     `json:"items"          validate:"required,min=1,dive"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Discount       decimal.Decimal `json:"discount"`
	OrderNote      string          `json:"orderNote"`
	DraftID        *uuid.UUID      `json:"draftId,omitempty"`
}

// ItemPatch is an admin line edit. A nil UnitPrice keeps the snapshot price.
type ItemPatch struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity"  validate:"gte=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

// UpdateModel is a partial admin edit. Nil fields are left unchanged.
type UpdateModel struct {
	Version        int64            `json:"version"        validate:"gte=1"`
	CustomerName   *string          `json:"customerName"`
	Phone          *string          `json:"phone"`
	Address        *string          `json:"address"`
	Zone           *zone.Zone       `json:"zone"           validate:"omitempty,oneof=inside-metro outside-metro"`
	Items          []ItemPatch      `json:"items"          validate:"omitempty,min=1,dive"`
	DeliveryCharge *decimal.Decimal `json:"deliveryCharge"`
	Discount       *decimal.Decimal `json:"discount"`
	CourierName    *string          `json:"courierName"`
	TrackingID     *string          `json:"trackingId"`
	AdminNote      *string          `json:"adminNote"`
	OrderNote      *string          `json:"orderNote"`
}
