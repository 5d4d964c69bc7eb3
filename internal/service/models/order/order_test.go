package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(status Status) *Order {
	return &Order{
		ID:     uuid.New(),
		Status: status,
		Items: []orderitem.OrderItem{
			{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(100), Quantity: 2},
			{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		},
		DeliveryCharge: decimal.NewFromInt(60),
		Discount:       decimal.Zero,
		Version:        1,
	}
}

func TestOrder_RecalculateTotal(t *testing.T) {
	o := newTestOrder(StatusPending)
	o.TotalAmount = decimal.NewFromInt(1)

	o.RecalculateTotal()

	assert.True(t, decimal.NewFromInt(250).Equal(o.Subtotal()))
	assert.True(t, decimal.NewFromInt(310).Equal(o.TotalAmount), "got %s", o.TotalAmount)

	o.Discount = decimal.NewFromInt(10)
	o.Items[1].Quantity = 3
	o.RecalculateTotal()
	assert.True(t, decimal.NewFromInt(400).Equal(o.TotalAmount), "got %s", o.TotalAmount)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusPending, true},
		{StatusCancelled, StatusConfirmed, true},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusReturned, true},
		{StatusReturned, StatusPartialReturned, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusShipped, false},
		{StatusConfirmed, StatusDelivered, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusShipped, StatusPending, false},
		{StatusPending, StatusPending, false},
		{Status("lost"), StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_TransitionTo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("sets attribution", func(t *testing.T) {
		o := newTestOrder(StatusPending)

		require.NoError(t, o.TransitionTo(StatusConfirmed, actor.Actor("Rahim"), now))

		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, "Rahim", o.ConfirmedBy)
		assert.Equal(t, "Rahim", o.LastUpdatedBy)
		assert.Equal(t, now, o.UpdatedAt)
	})

	t.Run("returned and partial returned share returnedBy", func(t *testing.T) {
		o := newTestOrder(StatusShipped)

		require.NoError(t, o.TransitionTo(StatusPartialReturned, actor.Actor("Karim"), now))

		assert.Equal(t, "Karim", o.ReturnedBy)
	})

	t.Run("pending to shipped is rejected", func(t *testing.T) {
		o := newTestOrder(StatusPending)

		err := o.TransitionTo(StatusShipped, actor.Actor("Rahim"), now)

		require.ErrorIs(t, err, apperr.ErrInvalidTransition)
		assert.Equal(t, StatusPending, o.Status)
		assert.Empty(t, o.ShippedBy)
	})

	t.Run("unknown actor still transitions", func(t *testing.T) {
		o := newTestOrder(StatusPending)

		require.NoError(t, o.TransitionTo(StatusCancelled, actor.Actor(""), now))

		assert.Equal(t, StatusCancelled, o.Status)
		assert.Empty(t, o.CancelledBy)
		assert.Empty(t, o.LastUpdatedBy)
	})

	t.Run("unknown status", func(t *testing.T) {
		o := newTestOrder(StatusPending)

		err := o.TransitionTo(Status("lost"), actor.Actor("Rahim"), now)

		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	})
}

func TestOrder_Ship(t *testing.T) {
	now := time.Now()

	for _, from := range []Status{StatusPending, StatusConfirmed, StatusShipped} {
		t.Run("from "+string(from), func(t *testing.T) {
			o := newTestOrder(from)

			require.NoError(t, o.Ship("Pathao", "TRK-1", actor.Actor("Rahim"), now))

			assert.Equal(t, StatusShipped, o.Status)
			assert.Equal(t, "Pathao", o.CourierName)
			assert.Equal(t, "TRK-1", o.TrackingID)
			assert.Equal(t, "Rahim", o.ShippedBy)
		})
	}

	for _, from := range []Status{StatusDelivered, StatusCancelled, StatusReturned, StatusPartialReturned} {
		t.Run("rejects "+string(from), func(t *testing.T) {
			o := newTestOrder(from)

			err := o.Ship("Pathao", "TRK-1", actor.Actor("Rahim"), now)

			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
			assert.Equal(t, from, o.Status)
		})
	}

	t.Run("requires courier", func(t *testing.T) {
		o := newTestOrder(StatusPending)

		assert.ErrorIs(t, o.Ship("", "TRK-1", actor.Actor("Rahim"), now), apperr.ErrValidationFailed)
	})
}

func TestStatus_CountsAsRevenue(t *testing.T) {
	assert.False(t, StatusCancelled.CountsAsRevenue())
	assert.False(t, StatusReturned.CountsAsRevenue())
	assert.True(t, StatusPartialReturned.CountsAsRevenue())
	assert.True(t, StatusPending.CountsAsRevenue())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)

	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
}
