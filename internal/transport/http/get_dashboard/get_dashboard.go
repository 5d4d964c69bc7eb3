package getdashboard

import (
	"context"
	"net/http"

	"github.com/shopfront/orders/internal/service/models/dashboard"
	"github.com/shopfront/orders/internal/transport/http/httpio"
)

type service interface {
	ComputeDashboard(ctx context.Context) (dashboard.Snapshot, error)
}

func GetDashboard(w http.ResponseWriter, r *http.Request, service service) {
	snapshot, err := service.ComputeDashboard(r.Context())
	if err != nil {
		httpio.Error(w, err)

		return
	}

	httpio.JSON(w, http.StatusOK, snapshot)
}
