package bulkassigncourier

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/services/fulfillmentsvc"
	"github.com/shopfront/orders/internal/transport/http/httpio"
	"github.com/shopfront/orders/pkg/http/middleware/auth"
)

type service interface {
	BulkAssignCourier(ctx context.Context, by actor.Actor, ids []uuid.UUID, courierName string) (fulfillmentsvc.BulkResult, error)
}

type bulkAssignCourierRequest struct {
	IDs         []string `json:"ids"         validate:"required,min=1,dive,uuid"`
	CourierName string   `json:"courierName" validate:"required"`
}

func (r *bulkAssignCourierRequest) ids() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.IDs))
	for i, raw := range r.IDs {
		ids[i] = uuid.MustParse(raw)
	}

	return ids
}

// BulkAssignCourier ships every listed order. Partial failure answers 207 with the per-order outcome.
func BulkAssignCourier(w http.ResponseWriter, r *http.Request, service service) {
	req := bulkAssignCourierRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		httpio.BadRequest(w, err)

		return
	}
	if err := validator.New().Struct(req); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	result, err := service.BulkAssignCourier(r.Context(), actor.Actor(auth.NameFrom(r.Context())), req.ids(), req.CourierName)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodePartialBatchFailure {
			slog.Warn("Bulk courier assignment partially failed",
				"succeeded", len(result.Succeeded),
				"failed", len(result.Failed),
			)
			httpio.ErrorWithData(w, err, result)

			return
		}
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, result)
}
