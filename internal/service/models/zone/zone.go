package zone

import (
	"database/sql/driver"
	"errors"
)

// Zone is the delivery zone of an order.
type Zone string

const (
	ZoneInsideMetro  Zone = "inside-metro"
	ZoneOutsideMetro Zone = "outside-metro"
)

var ErrInvalidZone = errors.New("invalid delivery zone")

// All lists every delivery zone.
var All = []Zone{ZoneInsideMetro, ZoneOutsideMetro}

func (z Zone) String() string {
	return string(z)
}

func (z Zone) Value() (driver.Value, error) {
	return z.String(), nil
}

func ParseZone(s string) (Zone, error) {
	switch s {
	case ZoneInsideMetro.String():
		return ZoneInsideMetro, nil
	case ZoneOutsideMetro.String():
		return ZoneOutsideMetro, nil
	default:
		return "", ErrInvalidZone
	}
}
