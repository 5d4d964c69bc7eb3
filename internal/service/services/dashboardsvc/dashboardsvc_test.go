package dashboardsvc

import (
	"context"
	"testing"
	"time"

	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/dashboard"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Collect(ctx context.Context, b dashboard.Bounds) (dashboard.Facets, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(dashboard.Facets), args.Error(1)
}

func TestComputeDashboard(t *testing.T) {
	dhaka := time.FixedZone("Asia/Dhaka", 6*60*60)
	// 20:30 UTC on March 31 is already April 1 in Dhaka.
	now := time.Date(2026, time.March, 31, 20, 30, 0, 0, time.UTC)

	repo := new(mockRepo)
	svc := MustNewDashboardService(
		WithDashboardRepository(repo),
		WithLocation(dhaka),
		WithClock(func() time.Time { return now }),
	)

	facets := dashboard.Facets{
		Totals:    dashboard.Rollup{Orders: 4, Revenue: decimal.NewFromInt(500)},
		Today:     dashboard.Rollup{Orders: 1, Revenue: decimal.NewFromInt(100)},
		ThisMonth: dashboard.Rollup{Orders: 1, Revenue: decimal.NewFromInt(100)},
		ByStatus: map[order.Status]int64{
			order.StatusPending:   2,
			order.StatusDelivered: 1,
			order.StatusCancelled: 1,
		},
		ByMonth: map[time.Month]dashboard.Rollup{
			time.March: {Orders: 3, Revenue: decimal.NewFromInt(400)},
			time.April: {Orders: 1, Revenue: decimal.NewFromInt(100)},
		},
	}
	repo.On("Collect", mock.Anything, mock.MatchedBy(func(b dashboard.Bounds) bool {
		return b.StartOfDay.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, dhaka)) &&
			b.StartOfMonth.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, dhaka)) &&
			b.StartOfYear.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, dhaka))
	})).Return(facets, nil)

	snap, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2026, snap.Year)
	assert.Equal(t, int64(4), snap.Totals.Orders)
	assert.True(t, snap.Totals.Revenue.Equal(decimal.NewFromInt(500)))

	require.Len(t, snap.StatusHistogram, len(order.Statuses))
	for i, bar := range snap.StatusHistogram {
		assert.Equal(t, order.Statuses[i], bar.Status)
	}
	assert.Equal(t, int64(2), snap.StatusHistogram[0].Count)

	require.Len(t, snap.Monthly, 12)
	assert.Equal(t, time.January, snap.Monthly[0].Month)
	assert.Equal(t, int64(0), snap.Monthly[0].Orders)
	assert.True(t, snap.Monthly[0].Revenue.IsZero())
	assert.Equal(t, int64(3), snap.Monthly[2].Orders)
	assert.True(t, snap.Monthly[3].Revenue.Equal(decimal.NewFromInt(100)))

	assert.NotNil(t, snap.Recent)
	assert.Empty(t, snap.Recent)
}

func TestComputeDashboardEmptyStore(t *testing.T) {
	repo := new(mockRepo)
	svc := MustNewDashboardService(WithDashboardRepository(repo))
	repo.On("Collect", mock.Anything, mock.Anything).Return(dashboard.Facets{}, nil)

	snap, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	for _, bar := range snap.StatusHistogram {
		assert.Zero(t, bar.Count)
	}
	for _, m := range snap.Monthly {
		assert.Zero(t, m.Orders)
		assert.True(t, m.Revenue.IsZero())
	}
}

func TestComputeDashboardStoreFailure(t *testing.T) {
	repo := new(mockRepo)
	svc := MustNewDashboardService(WithDashboardRepository(repo))
	repo.On("Collect", mock.Anything, mock.Anything).Return(dashboard.Facets{}, assert.AnError)

	_, err := svc.ComputeDashboard(context.Background())

	assert.ErrorIs(t, err, apperr.ErrDownstreamUnavailable)
}
