package tgtg

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Terminal handshake and session errors. Match with errors.Is.
var (
	// ErrNotLinked is returned when authByEmail answers with state TERMS:
	// the account exists but has not accepted the platform terms.
	ErrNotLinked = errors.New("account is not linked to the platform")

	// ErrNotAuthenticated is returned when an authenticated call is made on
	// a session that has never completed the handshake.
	ErrNotAuthenticated = errors.New("session is not authenticated")

	// ErrSessionExpired is returned when the refresh token was rejected.
	// The session's tokens have been cleared and the handshake must be rerun.
	ErrSessionExpired = errors.New("session expired")

	// ErrPollTimeout is returned when every poll attempt came back 202.
	ErrPollTimeout = errors.New("max polling attempts exceeded")
)

// ServerError is an unexpected HTTP status (or an unusable body) from one of
// the auth endpoints.
type ServerError struct {
	Op         string
	StatusCode int
	Body       []byte
	Reason     string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Reason, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Body)
}

// QueryError is a non-2xx response from the item search endpoint.
type QueryError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("item search failed (status %d): %s", e.StatusCode, e.Body)
}

// TransportError wraps a network-level failure from the gateway: DNS,
// connection refused, TLS, or the per-request timeout.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was the request timing out.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsStatus reports whether err carries the given HTTP status, either as a
// ServerError or a QueryError.
func IsStatus(err error, status int) bool {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode == status
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.StatusCode == status
	}
	return false
}
