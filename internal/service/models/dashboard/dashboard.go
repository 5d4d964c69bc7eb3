package dashboard

import (
	"time"

	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// RecentLimit is the size of the recent activity panel.
const RecentLimit = 5

// Rollup is an order count with revenue. Revenue excludes cancelled and returned orders.
type Rollup struct {
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthBucket is one month of the yearly series.
type MonthBucket struct {
	Month   time.Month      `json:"month"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Bounds are the period starts the facets are computed against.
type Bounds struct {
	StartOfDay       time.Time
	StartOfMonth     time.Time
	StartOfYear      time.Time
	StartOfNextYear  time.Time
	Location         *time.Location
	RevenueExcluded  []order.Status
	RecentOrderLimit int
}

// NewBounds derives period starts from now in loc.
func NewBounds(now time.Time, loc *time.Location) Bounds {
	local := now.In(loc)
	y, m, d := local.Date()

	return Bounds{
		StartOfDay:       time.Date(y, m, d, 0, 0, 0, 0, loc),
		StartOfMonth:     time.Date(y, m, 1, 0, 0, 0, 0, loc),
		StartOfYear:      time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
		StartOfNextYear:  time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc),
		Location:         loc,
		RevenueExcluded:  []order.Status{order.StatusCancelled, order.StatusReturned},
		RecentOrderLimit: RecentLimit,
	}
}

// Facets is the raw output of the aggregation queries, before zero filling.
type Facets struct {
	Totals    Rollup
	Today     Rollup
	ThisMonth Rollup
	ByStatus  map[order.Status]int64
	ByMonth   map[time.Month]Rollup
	Recent    []order.Order
}

// StatusCount is one histogram bar.
type StatusCount struct {
	Status order.Status `json:"status"`
	Count  int64        `json:"count"`
}

// Snapshot is the dashboard read model.
type Snapshot struct {
	Totals          Rollup        `json:"totals"`
	Today           Rollup        `json:"today"`
	ThisMonth       Rollup        `json:"thisMonth"`
	StatusHistogram []StatusCount `json:"statusHistogram"`
	Monthly         []MonthBucket `json:"monthly"`
	Recent          []order.Order `json:"recent"`
	Year            int           `json:"year"`
	GeneratedAt     time.Time     `json:"generatedAt"`
}
