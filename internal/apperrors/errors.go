package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for clients.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// APIError is the error type returned by services and rendered by the HTTP error handler.
type APIError struct {
	Code    Code
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another *APIError by code, so errors.Is(err, apperrors.ErrNotFound) works.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized = &APIError{Code: CodeUnauthorized}
	ErrForbidden    = &APIError{Code: CodeForbidden}
	ErrBadRequest   = &APIError{Code: CodeBadRequest}
	ErrValidation   = &APIError{Code: CodeValidation}
	ErrNotFound     = &APIError{Code: CodeNotFound}
	ErrConflict     = &APIError{Code: CodeConflict}
	ErrInternal     = &APIError{Code: CodeInternal}
)

func Unauthorized(message string) *APIError {
	return &APIError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *APIError {
	return &APIError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func BadRequest(message string) *APIError {
	return &APIError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

// Validation reports a missing or malformed field.
func Validation(field, message string) *APIError {
	return &APIError{Code: CodeValidation, Message: fmt.Sprintf("%s: %s", field, message), Status: http.StatusBadRequest}
}

// NotFound reports an absent resource, e.g. NotFound("photo").
func NotFound(resource string) *APIError {
	return &APIError{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound}
}

// Conflict reports a state conflict such as a duplicate follow. Clients receive 400.
func Conflict(message string) *APIError {
	return &APIError{Code: CodeConflict, Message: message, Status: http.StatusBadRequest}
}

// Internal wraps an unexpected failure. The message shown to clients stays generic.
func Internal(err error) *APIError {
	return &APIError{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}

// Wrapf wraps err as an internal error with context, passing through existing APIErrors.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return Internal(fmt.Errorf(format+": %w", append(args, err)...))
}
