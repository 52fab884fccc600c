package auth

import (
	"errors"
	"net/http"
)

// ErrEmptyUID is returned when a Session would be constructed without a uid.
var ErrEmptyUID = errors.New("session uid cannot be empty")

// ErrInvalidRedirect is returned when a user-supplied navigation target fails
// the same-origin relative-path policy. Always a client error, never retried.
var ErrInvalidRedirect = errors.New("invalid redirect target")

// ErrUnknownRequirement is returned when an endpoint declares a requirement
// that is not in the recognized registry. This is a programming error and is
// surfaced at route registration, never at request time.
var ErrUnknownRequirement = errors.New("unknown authorization requirement")

// ErrInvalidState is returned when an OAuth callback presents a state token
// that is unknown, already consumed, or older than the workflow timeout.
var ErrInvalidState = errors.New("invalid or expired OAuth state provided")

// AuthenticationFailed reports a missing session or insufficient privilege.
// Status carries the HTTP-equivalent code for the boundary layer.
type AuthenticationFailed struct {
	Status  int
	Message string
}

func (e *AuthenticationFailed) Error() string { return e.Message }

// Failed constructs an AuthenticationFailed with the default 403 status.
func Failed(message string) *AuthenticationFailed {
	return &AuthenticationFailed{Status: http.StatusForbidden, Message: message}
}

// ProtocolError reports malformed or unsupported credential material, or an
// upstream backend failure with internal detail suppressed.
type ProtocolError struct {
	Status  int
	Message string
	cause   error
}

func (e *ProtocolError) Error() string { return e.Message }

// Unwrap exposes the suppressed cause for logging; it is never sent to clients.
func (e *ProtocolError) Unwrap() error { return e.cause }

// NewProtocolError constructs a ProtocolError wrapping an optional cause.
func NewProtocolError(status int, message string, cause error) *ProtocolError {
	return &ProtocolError{Status: status, Message: message, cause: cause}
}

// ErrInvalidCredentials is returned by directory adapters when a bind is
// rejected. It maps to 403, distinct from connection or search failures.
var ErrInvalidCredentials = errors.New("invalid credentials provided")
