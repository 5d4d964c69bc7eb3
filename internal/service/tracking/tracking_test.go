package tracking

import (
	"strings"
	"testing"

	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/shopfront/orders/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()

	assert.True(t, strings.HasPrefix(a, Prefix))
	assert.Len(t, a, len(Prefix)+32)
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotEqual(t, a, b)
}

func TestAssign(t *testing.T) {
	t.Run("uses supplied id", func(t *testing.T) {
		var got string
		err := Assign("ABC-1", nil, func(id string) error {
			got = id
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ABC-1", got)
	})

	t.Run("taken supplied id is a conflict", func(t *testing.T) {
		err := Assign("ABC-1", nil, func(string) error { return order.ErrDuplicateTrackingID })

		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("regenerates after collision", func(t *testing.T) {
		ids := []string{"TRK-1", "TRK-2"}
		next := func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		var tried []string
		err := Assign("", next, func(id string) error {
			tried = append(tried, id)
			if id == "TRK-1" {
				return order.ErrDuplicateTrackingID
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"TRK-1", "TRK-2"}, tried)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := Assign("", func() string { return "TRK-X" }, func(string) error {
			calls++
			return order.ErrDuplicateTrackingID
		})

		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, MaxAttempts, calls)
	})

	t.Run("other errors are returned as is", func(t *testing.T) {
		err := Assign("", nil, func(string) error { return assert.AnError })

		assert.ErrorIs(t, err, assert.AnError)
	})
}
