package idashboardrepo

import (
	"context"

	"github.com/shopfront/orders/internal/service/models/dashboard"
)

// IDashboardRepository collects the dashboard facets from one consistent read.
type IDashboardRepository interface {
	Collect(ctx context.Context, bounds dashboard.Bounds) (dashboard.Facets, error)
}
