package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes client errors into a closed set of classes.
type Kind string

const (
	// KindGeneric is the catch-all class; the Code field carries the specifics.
	KindGeneric Kind = "generic"
	// KindNetwork covers transport failures, timeouts, and service unavailability.
	KindNetwork Kind = "network"
	// KindValidation covers local input problems and remote-reported field errors.
	KindValidation Kind = "validation"
	// KindAuthentication covers credential and permission failures (401/403).
	KindAuthentication Kind = "authentication"
	// KindRateLimit covers 429 responses with optional retry-after guidance.
	KindRateLimit Kind = "rate_limit"
)

// Stable machine-readable error codes.
const (
	CodeTimeout            = "TIMEOUT"
	CodeNetworkError       = "NETWORK_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeHTTPError          = "HTTP_ERROR"
	CodeParseError         = "PARSE_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeAuthenticationErr  = "AUTHENTICATION_ERROR"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInterceptorError   = "INTERCEPTOR_ERROR"
)

// Error is the uniform error shape returned by every layer of the client.
// It is constructed fresh per failure and never mutated after construction.
type Error struct {
	Kind       Kind                // Error class
	Code       string              // Stable machine-readable code
	Message    string              // Human-readable message
	StatusCode int                 // HTTP status (0 if not applicable)
	Fields     map[string][]string // Field-level detail for validation errors
	RetryAfter int                 // Seconds to wait before retry (rate limits)
	Err        error               // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status=%d, code=%s)", e.Kind, e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("[%s] %s (code=%s)", e.Kind, e.Message, e.Code)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether retrying could plausibly succeed.
// Authentication and validation failures, and missing resources, are
// conditions retrying cannot fix.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case KindAuthentication, KindValidation:
		return false
	}
	return e.Code != CodeNotFound
}

// WithStatusCode sets the status code and returns the error for chaining.
func (e *Error) WithStatusCode(statusCode int) *Error {
	e.StatusCode = statusCode
	return e
}

// WithErr sets the wrapped error and returns the error for chaining.
func (e *Error) WithErr(err error) *Error {
	e.Err = err
	return e
}

// NewError creates a generic error with an explicit code.
func NewError(code, message string) *Error {
	return &Error{Kind: KindGeneric, Code: code, Message: message}
}

// NewNetworkError creates a network error with the given subcode.
func NewNetworkError(code, message string) *Error {
	return &Error{Kind: KindNetwork, Code: code, Message: message}
}

// NewTimeoutError creates a network error with the TIMEOUT subcode.
func NewTimeoutError(message string) *Error {
	return &Error{Kind: KindNetwork, Code: CodeTimeout, Message: message}
}

// NewValidationError creates a validation error with optional field detail.
func NewValidationError(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationError, Message: message, Fields: fields}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeAuthenticationErr, Message: message}
}

// NewRateLimitError creates a rate limit error with retry-after guidance
// in seconds (0 if unknown).
func NewRateLimitError(retryAfter int) *Error {
	return &Error{
		Kind:       KindRateLimit,
		Code:       CodeRateLimitExceeded,
		Message:    "rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ClassifyStatus maps an HTTP status code to an error kind. It mirrors
// the classifier's status table without the payload extraction.
func ClassifyStatus(statusCode int) Kind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindNetwork
	default:
		return KindGeneric
	}
}
