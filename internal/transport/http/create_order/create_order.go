package createorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	"github.com/shopspring/decimal"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, model order.CreateModel) (order.Order, error)
}

// itemInCreateOrderRequest represents a line in a checkout request.
type itemInCreateOrderRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"gte=1"`
}

// createOrderRequest represents a storefront checkout. A client total is accepted and ignored.
type createOrderRequest struct {
	CustomerName   string                     `json:"customerName"   validate:"required"`
	Phone          string                     `json:"phone"          validate:"required"`
	Address        string                     `json:"address"        validate:"required"`
	Zone           string                     `json:"zone"           validate:"required"`
	Items          []itemInCreateOrderRequest `json:"items"          validate:"required,min=1,dive"`
	DeliveryCharge decimal.Decimal            `json:"deliveryCharge"`
	Discount       decimal.Decimal            `json:"discount"`
	TotalAmount    *decimal.Decimal           `json:"totalAmount"`
	OrderNote      string                     `json:"orderNote"`
	DraftID        string                     `json:"draftId"        validate:"omitempty,uuid"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.CreateModel.
func (r *createOrderRequest) toModel() (order.CreateModel, error) {
	z, err := zone.ParseZone(r.Zone)
	if err != nil {
		return order.CreateModel{}, err
	}

	items := make([]order.ItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.ItemInput{ProductID: uuid.MustParse(item.ProductID), Quantity: item.Quantity}
	}

	model := order.CreateModel{
		CustomerName:   r.CustomerName,
		Phone:          r.Phone,
		Address:        r.Address,
		Zone:           z,
		Items:          items,
		DeliveryCharge: r.DeliveryCharge,
		Discount:       r.Discount,
		OrderNote:      r.OrderNote,
	}
	if r.DraftID != "" {
		id := uuid.MustParse(r.DraftID)
		model.DraftID = &id
	}

	return model, nil
}

type createOrderResponse struct {
	OrderID     uuid.UUID       `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CreateOrder handles a storefront checkout.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		slog.Error("Error decoding request body for create order", "error", err)
		httpio.BadRequest(w, err)

		return
	}

	if err := req.Validate(); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		httpio.BadRequest(w, err)

		return
	}

	created, err := service.CreateOrder(r.Context(), model)
	if err != nil {
		slog.Error("Error creating order", "error", err)
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusCreated, createOrderResponse{OrderID: created.ID, TotalAmount: created.TotalAmount})
}
