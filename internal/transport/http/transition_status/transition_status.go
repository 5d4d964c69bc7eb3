package transitionstatus

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
)

type service interface {
	TransitionStatus(ctx context.Context, by actor.Actor, id uuid.UUID, next order.Status, version int64) (order.Order, error)
}

type transitionStatusRequest struct {
	Status  string `json:"status"  validate:"required"`
	Version int64  `json:"version" validate:"gte=1"`
}

// TransitionStatus moves an order to another status.
func TransitionStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	req := transitionStatusRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		httpio.BadRequest(w, err)

		return
	}
	if err := validator.New().Struct(req); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		httpio.BadRequest(w, err)

		return
	}

	updated, err := service.TransitionStatus(r.Context(), actor.Actor(auth.NameFrom(r.Context())), id, next, req.Version)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, updated)
}
