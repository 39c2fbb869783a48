package wealthsimple

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthenticationFailed indicates a login or OTP challenge was rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSessionExpired indicates the server rejected the bearer token.
	// The caller should re-authenticate and retry.
	ErrSessionExpired = errors.New("session expired")
)

// AuthError is an authentication failure carrying the server's response for
// diagnostics. It unwraps to ErrAuthenticationFailed.
type AuthError struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns the sentinel authentication error.
func (e *AuthError) Unwrap() error {
	return ErrAuthenticationFailed
}

// UnexpectedStatusError indicates the accounts endpoint returned a status
// the poller is not designed to recover from.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}
