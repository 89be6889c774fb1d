package apierrors

import (
	"net/http"
	"time"
)

// APIError is an error carrying the HTTP status it should surface as.
// Messages are user-facing and deliberately generic; anything sensitive
// stays in logs.
type APIError struct {
	HTTPStatus int
	Message    string
	// RetryAfter is set only for lockout errors and ends up in the
	// Retry-After header.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return e.Message
}

// NewInvalidCredentials is the generic login failure, identical whether
// the email exists or not.
func NewInvalidCredentials() *APIError {
	return &APIError{HTTPStatus: http.StatusUnauthorized, Message: "invalid credentials"}
}

// NewTooManyAttempts signals a brute-force lockout with a retry hint.
func NewTooManyAttempts(retryAfter time.Duration) *APIError {
	return &APIError{HTTPStatus: http.StatusTooManyRequests, Message: "too many login attempts", RetryAfter: retryAfter}
}

// NewSessionExpired is what every refresh failure looks like from the
// outside, including detected token replays.
func NewSessionExpired() *APIError {
	return &APIError{HTTPStatus: http.StatusUnauthorized, Message: "session expired"}
}

// NewUnauthenticated means no identity could be resolved for the request.
func NewUnauthenticated() *APIError {
	return &APIError{HTTPStatus: http.StatusUnauthorized, Message: "authentication required"}
}

// NewForbidden means the identity is known but not permitted. The body
// never echoes which roles would have been accepted.
func NewForbidden() *APIError {
	return &APIError{HTTPStatus: http.StatusForbidden, Message: "forbidden"}
}

// NewEmailTaken is returned on registration with an existing email.
func NewEmailTaken() *APIError {
	return &APIError{HTTPStatus: http.StatusConflict, Message: "email already registered"}
}

// NewBadRequest wraps a validation failure message.
func NewBadRequest(message string) *APIError {
	return &APIError{HTTPStatus: http.StatusBadRequest, Message: message}
}
