package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConfiguration  = errors.New("gateway not configured")
	ErrTransport      = errors.New("provider communication failure")
	ErrProviderDomain = errors.New("provider rejected request")
)

// ConfigurationError reports a missing or unusable gateway setting.
// It is user-facing and never retryable.
type ConfigurationError struct {
	Gateway string
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s gateway is not configured: missing %s", e.Gateway, e.Setting)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// TransportError reports a network failure, timeout or open circuit.
type TransportError struct {
	Op    string
	Cause string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// DomainError reports a non-2xx or malformed provider response.
type DomainError struct {
	StatusCode int
	Message    string
}

func (e *DomainError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *DomainError) Unwrap() error { return ErrProviderDomain }

// AuthenticationError reports a webhook secret mismatch.
type AuthenticationError struct {
	Gateway string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s webhook authentication failed", e.Gateway)
}

func (e *AuthenticationError) Unwrap() error { return ErrUnauthorized }

// NotFoundError reports an identifier that resolves to no order.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %q", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CustomerMessage returns the text safe to show a customer for err.
func CustomerMessage(err error) string {
	var cfgErr *ConfigurationError
	var domainErr *DomainError
	switch {
	case errors.As(err, &cfgErr):
		return "This payment method is temporarily unavailable. Please choose another one."
	case errors.As(err, &domainErr):
		return domainErr.Message
	case errors.Is(err, ErrTransport):
		return "Could not communicate with the payment provider. Please try again."
	default:
		return "Unexpected error while processing the payment."
	}
}

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized creates an unauthorized error wrapping cause.
func Unauthorized(message string, cause error) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       "unauthorized",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        errors.Join(ErrUnauthorized, cause),
	}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       "internal_error",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, ErrProviderDomain):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
