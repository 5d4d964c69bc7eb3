// Package tracking allocates courier tracking ids.
package tracking

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/order"
)

// Prefix starts every generated tracking id.
const Prefix = "TRK-"

// MaxAttempts bounds regeneration after a tracking id collision.
const MaxAttempts = 3

// Generator returns a new tracking id.
type Generator func() string

// NewID returns Prefix followed by an uppercase UUIDv7 without dashes.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Prefix + strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}

// Assign runs write with the supplied tracking id, or with generated ids until one is free.
// A taken supplied id is a conflict. write must start from unmodified state on every call.
func Assign(supplied string, generate Generator, write func(trackingID string) error) error {
	if supplied != "" {
		err := write(supplied)
		if errors.Is(err, order.ErrDuplicateTrackingID) {
			return apperr.Newf(apperr.CodeConflict, "tracking id %s is already in use", supplied)
		}

		return err
	}

	if generate == nil {
		generate = NewID
	}

	var err error
	for i := 0; i < MaxAttempts; i++ {
		err = write(generate())
		if !errors.Is(err, order.ErrDuplicateTrackingID) {
			return err
		}
	}

	return apperr.Wrap(apperr.CodeConflict, err, "could not allocate a unique tracking id")
}
