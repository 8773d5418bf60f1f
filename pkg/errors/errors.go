package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeInvalidID  ErrorType = "invalid_id"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeCanceled   ErrorType = "canceled"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a fetch error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error wrapping cause
func New(t ErrorType, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// Status creates an http_status error for an unexpected response code
func Status(code int, url string) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("unexpected status %d from %s", code, url),
		Code:    code,
	}
}

// FromTransport classifies an error returned by http.Client.Do
func FromTransport(err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return New(ErrorTypeCanceled, err, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return New(ErrorTypeTimeout, err, "request timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(ErrorTypeTimeout, err, "request timed out")
	}
	return New(ErrorTypeNetwork, err, "network error: %v", err)
}

// TypeOf reports the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	if errors.Is(err, context.Canceled) {
		return ErrorTypeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given ErrorType
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
