// Package client is the Go SDK for the ProfiRadce API. It keeps a local
// cache of list and detail views consistent with server state through
// explicit invalidation and an optimistic-update protocol for notes.
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind buckets API failures into the categories callers act on.
type ErrorKind string

const (
	ErrorKindNetwork    ErrorKind = "NETWORK"    // no response reached the server
	ErrorKindValidation ErrorKind = "VALIDATION" // 4xx with field-level detail
	ErrorKindAuth       ErrorKind = "AUTH"       // 401/403
	ErrorKindNotFound   ErrorKind = "NOT_FOUND"  // 404
	ErrorKindServer     ErrorKind = "SERVER"     // 5xx
	ErrorKindUnknown    ErrorKind = "UNKNOWN"
)

// Error is the typed failure returned by every SDK call.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf classifies any error; non-SDK errors map to UNKNOWN.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrorKindUnknown
}

// IsRetryable reports whether a read may transparently retry after err.
// Mutations never retry regardless.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrorKindNetwork, ErrorKindServer:
		return true
	}
	return false
}

func networkError(err error) *Error {
	return &Error{Kind: ErrorKindNetwork, Message: err.Error(), cause: err}
}

func validationError(message string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: message}
}

func statusError(statusCode int, message string) *Error {
	kind := ErrorKindUnknown
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = ErrorKindAuth
	case statusCode == http.StatusNotFound:
		kind = ErrorKindNotFound
	case statusCode >= 400 && statusCode < 500:
		kind = ErrorKindValidation
	case statusCode >= 500:
		kind = ErrorKindServer
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: message}
}
