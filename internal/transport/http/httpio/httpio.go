// Package httpio holds the response envelope and request helpers shared by the endpoint packages.
package httpio

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/apperr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeValidationFailed:
		return http.StatusBadRequest
	case apperr.CodeInvalidTransition, apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodePartialBatchFailure:
		return http.StatusMultiStatus
	case apperr.CodeDownstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes a successful envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Error writes a failure envelope. Uncoded errors are reported as internal without their text.
func Error(w http.ResponseWriter, err error) {
	ErrorWithData(w, err, nil)
}

// ErrorWithData writes a failure envelope that still carries a payload, used for partial batches.
func ErrorWithData(w http.ResponseWriter, err error, data any) {
	code := apperr.CodeOf(err)
	status := StatusFor(code)

	msg := err.Error()
	if code == "" {
		slog.Error("Unhandled error", "error", err)
		msg = http.StatusText(http.StatusInternalServerError)
	}

	write(w, status, Envelope{Success: false, Error: msg, Code: string(code), Data: data})
}

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// BadRequest writes a validation failure for malformed input, or 413 when the body was cut off
// by the size limit.
func BadRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		write(w, http.StatusRequestEntityTooLarge, Envelope{
			Success: false,
			Error:   fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			Code:    "PAYLOAD_TOO_LARGE",
		})

		return
	}

	Error(w, apperr.Wrap(apperr.CodeValidationFailed, err, err.Error()))
}

// Unauthorized writes a 401 for a missing or rejected bearer token.
func Unauthorized(w http.ResponseWriter, err error) {
	write(w, http.StatusUnauthorized, Envelope{Success: false, Error: err.Error(), Code: "UNAUTHORIZED"})
}

// TooManyRequests writes a 429 for rate limited clients.
func TooManyRequests(w http.ResponseWriter) {
	write(w, http.StatusTooManyRequests, Envelope{Success: false, Error: "too many requests", Code: "RATE_LIMITED"})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	return json.NewDecoder(r.Body).Decode(dst)
}

// PathID parses the {id} route parameter.
func PathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.CodeValidationFailed, err, "invalid id")
	}

	return id, nil
}
