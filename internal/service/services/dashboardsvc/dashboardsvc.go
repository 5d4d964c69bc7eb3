package dashboardsvc

import (
	"context"
	"time"

	"github.com/shopfront/orders/internal/dal/interfaces/idashboardrepo"
	"github.com/shopfront/orders/internal/dal/postgres"
	dashboardrepo "github.com/shopfront/orders/internal/dal/repositories/dashboard/postgres"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/dashboard"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// DashboardService builds the admin dashboard read model.
type DashboardService struct {
	repo     idashboardrepo.IDashboardRepository
	location *time.Location
	now      func() time.Time
}

// option is a function that configures the DashboardService.
type option func(*DashboardService)

// MustNewDashboardService creates a new DashboardService.
func MustNewDashboardService(opts ...option) *DashboardService {
	s := &DashboardService{
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("dashboardsvc: dashboard repository is required")
	}

	return s
}

// WithPostgresClient sets the dashboard store of the DashboardService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *DashboardService) {
		s.repo = dashboardrepo.NewDashboardRepository(pgClient.DB())
	}
}

// WithDashboardRepository sets the dashboard store of the DashboardService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDashboardRepository(repo idashboardrepo.IDashboardRepository) option {
	return func(s *DashboardService) {
		s.repo = repo
	}
}

// WithLocation sets the shop timezone used for day and month boundaries.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLocation(loc *time.Location) option {
	return func(s *DashboardService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *DashboardService) {
		s.now = now
	}
}

// ComputeDashboard returns totals, today, this month, the status histogram, the January to
// December series of the current year and the latest orders.
func (s *DashboardService) ComputeDashboard(ctx context.Context) (dashboard.Snapshot, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "DashboardService.ComputeDashboard")
	defer span.End()

	now := s.now().In(s.location)
	bounds := dashboard.NewBounds(now, s.location)

	facets, err := s.repo.Collect(ctx, bounds)
	if err != nil {
		return dashboard.Snapshot{}, apperr.Downstream(err, "failed to compute dashboard")
	}

	return buildSnapshot(facets, now), nil
}

func buildSnapshot(f dashboard.Facets, now time.Time) dashboard.Snapshot {
	histogram := make([]dashboard.StatusCount, 0, len(order.Statuses))
	for _, status := range order.Statuses {
		histogram = append(histogram, dashboard.StatusCount{Status: status, Count: f.ByStatus[status]})
	}

	monthly := make([]dashboard.MonthBucket, 0, 12)
	for m := time.January; m <= time.December; m++ {
		r := f.ByMonth[m]
		revenue := r.Revenue
		if r.Orders == 0 {
			revenue = decimal.Zero
		}
		monthly = append(monthly, dashboard.MonthBucket{Month: m, Orders: r.Orders, Revenue: revenue})
	}

	recent := f.Recent
	if recent == nil {
		recent = []order.Order{}
	}

	return dashboard.Snapshot{
		Totals:          f.Totals,
		Today:           f.Today,
		ThisMonth:       f.ThisMonth,
		StatusHistogram: histogram,
		Monthly:         monthly,
		Recent:          recent,
		Year:            now.Year(),
		GeneratedAt:     now,
	}
}
