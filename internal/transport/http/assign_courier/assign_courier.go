package assigncourier

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
	AssignCourier(
		ctx context.Context,
		by actor.Actor,
		id uuid.UUID,
		courierName string,
		trackingID string,
		version int64,
	) (order.Order, error)
}

type assignCourierRequest struct {
	CourierName string `json:"courierName" validate:"required"`
	TrackingID  string `json:"trackingId"`
	Version     int64  `json:"version"     validate:"gte=1"`
}

// AssignCourier ships one order. A missing tracking id is generated.
func AssignCourier(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	req := assignCourierRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		httpio.BadRequest(w, err)

		return
	}
	if err := validator.New().Struct(req); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	shipped, err := service.AssignCourier(
		r.Context(),
		actor.Actor(auth.NameFrom(r.Context())),
		id,
		req.CourierName,
		req.TrackingID,
		req.Version,
	)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, shipped)
}
