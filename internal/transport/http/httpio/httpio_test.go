package httpio

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopfront/orders/internal/service/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.CodeNotFound, "order not found"), http.StatusNotFound},
		{apperr.New(apperr.CodeValidationFailed, "bad"), http.StatusBadRequest},
		{apperr.New(apperr.CodeInvalidTransition, "no"), http.StatusConflict},
		{apperr.New(apperr.CodeConflict, "stale"), http.StatusConflict},
		{apperr.New(apperr.CodePartialBatchFailure, "some failed"), http.StatusMultiStatus},
		{apperr.Downstream(errors.New("dial tcp"), "failed to list orders"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, tc.err)

		assert.Equal(t, tc.want, rec.Code, tc.err.Error())

		var body Envelope
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Error)
	}
}

func TestUncodedErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"orderId": "x"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"orderId":"x"}}`, rec.Body.String())
}

func TestDecodeOverLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"`+strings.Repeat("a", 64)+`"}`))
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var dst map[string]string
	err := Decode(req, &dst)
	require.Error(t, err)

	BadRequest(rec, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body.Code)
}
