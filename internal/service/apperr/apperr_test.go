package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Newf(CodeNotFound, "order %s not found", "abc")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "order abc not found", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to update order: %w", ErrConflict)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestDownstream(t *testing.T) {
	t.Run("wraps plain errors", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Downstream(cause, "failed to load order")

		assert.ErrorIs(t, err, ErrDownstreamUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load order: connection refused", err.Error())
	})

	t.Run("keeps coded errors", func(t *testing.T) {
		err := Downstream(ErrNotFound, "failed to load order")

		assert.Same(t, ErrNotFound, err)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Downstream(nil, "noop"))
	})
}

func TestCodeOf_Uncoded(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
