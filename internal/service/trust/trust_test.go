package trust

import (
	"testing"

	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/stretchr/testify/assert"
)

func TestScore_NoHistory(t *testing.T) {
	p := Score(nil)

	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 0, p.SuccessRate)
	assert.Equal(t, TierUnknown, p.Tier)
}

func TestScore_TwoDeliveredOneCancelled(t *testing.T) {
	p := Score(map[order.Status]int{
		order.StatusDelivered: 2,
		order.StatusCancelled: 1,
	})

	assert.Equal(t, Profile{
		Total:       3,
		Delivered:   2,
		Cancelled:   1,
		SuccessRate: 67,
		Tier:        TierUnknown,
	}, p)
}

func TestScore_MixedHistory(t *testing.T) {
	p := Score(map[order.Status]int{
		order.StatusDelivered:       4,
		order.StatusReturned:        1,
		order.StatusPartialReturned: 1,
		order.StatusPending:         2,
	})

	assert.Equal(t, 8, p.Total)
	assert.Equal(t, 2, p.Returned)
	assert.Equal(t, 50, p.SuccessRate)
	assert.Equal(t, TierUnknown, p.Tier)
}

func TestScore_AllCancelledIsRisky(t *testing.T) {
	p := Score(map[order.Status]int{order.StatusCancelled: 2})

	assert.Equal(t, 0, p.SuccessRate)
	assert.Equal(t, TierRisky, p.Tier)
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		rate int
		want Tier
	}{
		{100, TierTrusted},
		{80, TierTrusted},
		{79, TierUnknown},
		{50, TierUnknown},
		{49, TierRisky},
		{0, TierRisky},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.rate), "rate %d", tt.rate)
	}
}
