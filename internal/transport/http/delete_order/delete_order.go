package deleteorder

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
)

type service interface {
	DeleteOrder(ctx context.Context, by actor.Actor, id uuid.UUID) error
}

func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := httpio.PathID(r)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	if err := service.DeleteOrder(r.Context(), actor.Actor(auth.NameFrom(r.Context())), id); err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, map[string]uuid.UUID{"orderId": id})
}
