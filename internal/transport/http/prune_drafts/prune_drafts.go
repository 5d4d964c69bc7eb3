package prunedrafts

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	PruneDrafts(ctx context.Context, keep int) (int64, error)
}

type pruneDraftsRequest struct {
	Keep *int `json:"keep" validate:"required,gte=0"`
}

type pruneDraftsResponse struct {
	Removed int64 `json:"removed"`
}

func PruneDrafts(w http.ResponseWriter, r *http.Request, service service) {
	req := pruneDraftsRequest{}
	if err := httpio.Decode(r, &req); err != nil {
		httpio.BadRequest(w, err)

		return
	}
	if err := validator.New().Struct(req); err != nil {
		httpio.BadRequest(w, err)

		return
	}

	removed, err := service.PruneDrafts(r.Context(), *req.Keep)
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, pruneDraftsResponse{Removed: removed})
}
