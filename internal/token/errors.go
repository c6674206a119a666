package token

import (
	"context"
	"errors"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
)

var (
	// ErrAuthenticationRequired is returned when no access token is stored.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrTokenInvalid is returned when the backend reports the access token invalid.
	ErrTokenInvalid = errors.New("access token is no longer valid")

	// ErrSuperseded is returned when a refresh finished after a login or
	// logout replaced the credentials it was refreshing.
	ErrSuperseded = errors.New("credentials were replaced during refresh")

	// ErrAuthenticatorNil is returned when the manager is created without a backend.
	ErrAuthenticatorNil = errors.New("token authenticator is nil")

	// ErrStoreNil is returned when the manager is created without a credential store.
	ErrStoreNil = errors.New("credential store is nil")
)

// IsTerminal reports whether a refresh failure ends the session. Only
// network failures and cancellations leave the session intact; a 5xx or an
// unreadable refresh response ends it too.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}

	return !errors.Is(err, backend.ErrNetworkUnavailable) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
