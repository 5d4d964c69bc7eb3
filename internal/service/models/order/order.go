package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/actor"
	"github.com/shopfront/orders/internal/service/models/orderitem"
	"github.com/shopfront/orders/internal/service/models/zone"
	"github.com/shopspring/decimal"
)

// ErrDuplicateTrackingID is returned by the store when a tracking id is already taken.
var ErrDuplicateTrackingID = errors.New("tracking id already in use")

// Order represents a placed customer order.
type Order struct {
	ID             uuid.UUID             `json:"id"`
	CustomerName   string                `json:"customerName"`
	Phone          string                `json:"phone"`
	PhoneKey       string                `json:"-"`
	Address        string                `json:"address"`
	Zone           zone.Zone             `json:"zone"`
	Items          []orderitem.OrderItem `json:"items"`
	DeliveryCharge decimal.Decimal       `json:"deliveryCharge"`
	Discount       decimal.Decimal       `json:"discount"`
	TotalAmount    decimal.Decimal       `json:"totalAmount"`
	Status         Status                `json:"status"`
	CourierName    string                `json:"courierName"`
	TrackingID     string                `json:"trackingId"`
	AdminNote      string                `json:"adminNote"`
	OrderNote      string                `json:"orderNote"`
	ConfirmedBy    string                `json:"confirmedBy"`
	ShippedBy      string                `json:"shippedBy"`
	DeliveredBy    string                `json:"deliveredBy"`
	CancelledBy    string                `json:"cancelledBy"`
	ReturnedBy     string                `json:"returnedBy"`
	LastUpdatedBy  string                `json:"lastUpdatedBy"`
	Version        int64                 `json:"version"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Subtotal returns the sum of all line totals.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}

	return sum
}

// RecalculateTotal sets TotalAmount = subtotal + delivery charge - discount.
func (o *Order) RecalculateTotal() {
	o.TotalAmount = o.Subtotal().Add(o.DeliveryCharge).Sub(o.Discount)
}

// SetPhone stores the phone as entered together with its matching key.
func (o *Order) SetPhone(phone string) {
	o.Phone = phone
	o.PhoneKey = NormalizePhone(phone)
}

// TransitionTo applies a manual status change checked against the allow-list.
func (o *Order) TransitionTo(next Status, by actor.Actor, now time.Time) error {
	if !next.IsValid() {
		return apperr.Newf(apperr.CodeValidationFailed, "unknown status %q", next)
	}
	if !o.Status.CanTransitionTo(next) {
		return apperr.Newf(apperr.CodeInvalidTransition, "cannot move order from %s to %s", o.Status, next)
	}

	o.Status = next
	o.attribute(next, by)
	o.UpdatedAt = now

	return nil
}

// Ship hands the order to a courier. Pending and confirmed orders move to shipped;
// shipped orders get their courier reassigned.
func (o *Order) Ship(courierName, trackingID string, by actor.Actor, now time.Time) error {
	if courierName == "" {
		return apperr.New(apperr.CodeValidationFailed, "courier name is required")
	}
	if trackingID == "" {
		return apperr.New(apperr.CodeValidationFailed, "tracking id is required")
	}
	if !o.Status.CanShip() && o.Status != StatusShipped {
		return apperr.Newf(apperr.CodeInvalidTransition, "cannot ship order in status %s", o.Status)
	}

	o.Status = StatusShipped
	o.CourierName = courierName
	o.TrackingID = trackingID
	o.attribute(StatusShipped, by)
	o.UpdatedAt = now

	return nil
}

// Touch records a non-status edit.
func (o *Order) Touch(by actor.Actor, now time.Time) {
	if by.Known() {
		o.LastUpdatedBy = by.String()
	}
	o.UpdatedAt = now
}

func (o *Order) attribute(status Status, by actor.Actor) {
	if !by.Known() {
		return
	}

	switch status {
	case StatusConfirmed:
		o.ConfirmedBy = by.String()
	case StatusShipped:
		o.ShippedBy = by.String()
	case StatusDelivered:
		o.DeliveredBy = by.String()
	case StatusCancelled:
		o.CancelledBy = by.String()
	case StatusReturned, StatusPartialReturned:
		o.ReturnedBy = by.String()
	}
	o.LastUpdatedBy = by.String()
}
