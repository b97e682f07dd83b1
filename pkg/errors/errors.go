package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrNetwork        = errors.New("network failure")
	ErrNoActiveEvent  = errors.New("no active event")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error without a resource reference.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Unavailable creates a 503 error for a downstream outage.
func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrServiceUnavail, err),
	}
}

// NoActiveEvent creates a 400 error for an unresolvable active-event identity.
// This is a validation failure, not a network one: retrying will not help
// until an event is activated on the platform.
func NoActiveEvent() *AppError {
	return &AppError{
		Code:    "NO_ACTIVE_EVENT",
		Message: "no active event is configured",
		Status:  http.StatusBadRequest,
		Err:     ErrNoActiveEvent,
	}
}

// Network wraps a transport-level failure.
func Network(err error) *AppError {
	return &AppError{
		Code:    "NETWORK_ERROR",
		Message: "network request failed",
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrNetwork, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoActiveEvent):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Class buckets an error for the optimistic mutation pipeline's
// rollback-versus-retain decision.
type Class int

const (
	// ClassUnknown is the conservative default: roll back the optimistic change.
	ClassUnknown Class = iota
	// ClassValidation covers constraint rejections and malformed requests.
	// Not retryable; the optimistic change is rolled back.
	ClassValidation
	// ClassNetwork covers timeouts and transport failures. Potentially
	// transient; an optimistic add is retained as pending-sync.
	ClassNetwork
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Classify maps an error onto the pipeline taxonomy. All rollback-versus-retain
// decisions flow through this single function; call sites never inspect error
// strings themselves.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	switch {
	case errors.Is(err, ErrNetwork),
		errors.Is(err, ErrServiceUnavail),
		errors.Is(err, context.DeadlineExceeded):
		return ClassNetwork
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNoActiveEvent):
		return ClassValidation
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassNetwork
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Status == http.StatusServiceUnavailable || appErr.Status == http.StatusGatewayTimeout:
			return ClassNetwork
		case appErr.Status >= 400 && appErr.Status < 500:
			return ClassValidation
		}
	}

	return ClassUnknown
}
