package aps

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCachedToken is returned when server mode is active and no valid
// persisted token exists. Interactive authorization must be run first
// (e.g. `accbridge auth login` on a machine with a browser).
var ErrNoCachedToken = errors.New("no cached token available; run interactive authorization first")

// BindError indicates the callback listener could not bind its port.
// The port is a fixed contract with the registered OAuth redirect URI,
// so no other port is attempted.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot start callback listener on port %d (make sure the port is not in use): %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// AuthorizationTimeoutError indicates the user did not complete the
// browser authorization within the wait bound.
type AuthorizationTimeoutError struct {
	Timeout time.Duration
}

func (e *AuthorizationTimeoutError) Error() string {
	return fmt.Sprintf("authorization timed out after %s: no code received from the browser redirect", e.Timeout)
}

// ExchangeError indicates the token endpoint rejected an exchange.
// Body carries the provider's response text for diagnosis.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}
