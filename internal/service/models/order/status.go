package order

import (
	"database/sql/driver"
	"errors"
)

// Status is the fulfillment status of an order.
type Status string

const (
	StatusPending         Status = "pending"
	StatusConfirmed       Status = "confirmed"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturned        Status = "returned"
	StatusPartialReturned Status = "partial-returned"
)

var ErrInvalidStatus = errors.New("invalid order status")

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
	StatusPartialReturned,
}

// transitions is the manual status allow-list. Moves stay inside the pre-fulfillment
// or the post-fulfillment group; entering shipped goes through Order.Ship.
var transitions = map[Status][]Status{
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusPending, StatusCancelled},
	StatusCancelled:       {StatusPending, StatusConfirmed},
	StatusShipped:         {StatusDelivered, StatusReturned, StatusPartialReturned},
	StatusDelivered:       {StatusShipped, StatusReturned, StatusPartialReturned},
	StatusReturned:        {StatusShipped, StatusDelivered, StatusPartialReturned},
	StatusPartialReturned: {StatusShipped, StatusDelivered, StatusReturned},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// IsValid checks if the status is a known Status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo checks the manual transition allow-list.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// AllowedTransitions returns the statuses reachable from s by a manual transition.
func (s Status) AllowedTransitions() []Status {
	return append([]Status(nil), transitions[s]...)
}

// CanShip reports whether a courier hand-off may move the order to shipped.
func (s Status) CanShip() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CountsAsRevenue reports whether orders in this status contribute to revenue.
func (s Status) CountsAsRevenue() bool {
	return s != StatusCancelled && s != StatusReturned
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}

	return st, nil
}
