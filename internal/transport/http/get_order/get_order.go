package getorder

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/services/ordersvc"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	GetOrder(ctx context.Context, id uuid.UUID) (ordersvc.OrderDetails, error)
}

// GetOrder returns one order with live product data and the customer's trust profile.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	details, err := service.GetOrder(r.Context(), id)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, details)
}
