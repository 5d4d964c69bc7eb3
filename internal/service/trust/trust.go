// Package trust derives a customer trust signal from historical order outcomes.
package trust

import (
	"math"

	"github.com/shopfront/orders/internal/service/models/order"
)

// Tier is a qualitative risk label.
type Tier string

const (
	TierTrusted Tier = "trusted"
	TierUnknown Tier = "unknown"
	TierRisky   Tier = "risky"
)

const (
	trustedFrom = 80
	riskyBelow  = 50
)

// Profile is the trust view of a customer's other orders.
type Profile struct {
	Total       int  `json:"total"`
	Delivered   int  `json:"delivered"`
	Cancelled   int  `json:"cancelled"`
	Returned    int  `json:"returned"`
	SuccessRate int  `json:"successRate"`
	Tier        Tier `json:"tier"`
}

// Score computes the profile from per-status order counts.
// Returned counts both full and partial returns. No history scores 0 with an unknown tier.
func Score(history map[order.Status]int) Profile {
	p := Profile{}
	for status, n := range history {
		p.Total += n
		switch status {
		case order.StatusDelivered:
			p.Delivered += n
		case order.StatusCancelled:
			p.Cancelled += n
		case order.StatusReturned, order.StatusPartialReturned:
			p.Returned += n
		}
	}

	if p.Total == 0 {
		p.Tier = TierUnknown
		return p
	}

	p.SuccessRate = int(math.Round(float64(p.Delivered) / float64(p.Total) * 100))
	p.Tier = TierFor(p.SuccessRate)

	return p
}

// TierFor maps a success rate to a tier.
func TierFor(successRate int) Tier {
	switch {
	case successRate >= trustedFrom:
		return TierTrusted
	case successRate < riskyBelow:
		return TierRisky
	default:
		return TierUnknown
	}
}
