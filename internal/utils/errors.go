package utils

import (
	"errors"
	"net/http"
)

// AppError is an error that already knows how it should be presented to an
// HTTP caller. Message is the only text that leaves the process; Err keeps
// the underlying cause for logging.
type AppError struct {
	StatusCode  int
	Message     string
	HasAnalyzed bool
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCause attaches the internal cause and returns the same error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// AsAppError reports whether err is, or wraps, an *AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

// NewForbiddenError is used for exhausted quotas; the flag tells clients to
// stop retrying.
func NewForbiddenError(message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Message: message, HasAnalyzed: true}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewPayloadTooLargeError(message string) *AppError {
	return &AppError{StatusCode: http.StatusRequestEntityTooLarge, Message: message}
}

func NewUnprocessableError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnprocessableEntity, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

func NewBadGatewayError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: message}
}

func NewServiceUnavailableError(message string) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Message: message}
}

func NewGatewayTimeoutError(message string) *AppError {
	return &AppError{StatusCode: http.StatusGatewayTimeout, Message: message}
}
