package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an application error.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeValidationFailed      Code = "VALIDATION_FAILED"
	CodeInvalidTransition     Code = "INVALID_TRANSITION"
	CodePartialBatchFailure   Code = "PARTIAL_BATCH_FAILURE"
	CodeDownstreamUnavailable Code = "DOWNSTREAM_UNAVAILABLE"
	CodeConflict              Code = "CONFLICT"
)

// Error is a coded application error. Two errors match with errors.Is when their codes match.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

var (
	ErrNotFound              = New(CodeNotFound, "resource not found")
	ErrValidationFailed      = New(CodeValidationFailed, "validation failed")
	ErrInvalidTransition     = New(CodeInvalidTransition, "status transition not allowed")
	ErrPartialBatchFailure   = New(CodePartialBatchFailure, "some batch items failed")
	ErrDownstreamUnavailable = New(CodeDownstreamUnavailable, "store unavailable")
	ErrConflict              = New(CodeConflict, "resource was modified by another request")
)

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to a cause.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in the chain, or "" if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

// Downstream passes coded errors through unchanged and wraps everything else
// as DownstreamUnavailable.
func Downstream(err error, message string) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}

	return Wrap(CodeDownstreamUnavailable, err, message)
}
