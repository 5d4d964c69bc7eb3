package updateorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
)

type service interface {
	UpdateOrderFields(ctx context.Context, by actor.Actor, id uuid.UUID, model order.UpdateModel) (order.Order, error)
}

// UpdateOrder applies a partial admin edit. The body carries the version the editor last read.
func UpdateOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	model := order.UpdateModel{}
	if err := httpio.Decode(r, &model); err != nil {
		slog.Error("Error decoding request body for update order", "error", err)
		httpio.BadRequest(w, err)

		return
	}

	updated, err := service.UpdateOrderFields(r.Context(), actor.Actor(auth.NameFrom(r.Context())), id, model)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, updated)
}
