package session

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a logged in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the user lacks the role an operation needs.
	ErrForbidden = errors.New("forbidden")

	// ErrSuperseded is returned when a login finished after a logout or another login.
	ErrSuperseded = errors.New("session changed while the request was running")

	// ErrNoUserProfile is returned when neither the current user endpoint nor
	// the login response provided a user.
	ErrNoUserProfile = errors.New("backend returned no user profile")

	// ErrMissingDependency is returned when New is called without store or client.
	ErrMissingDependency = errors.New("session needs a credential store and a backend client")
)
