package app

import "errors"

var (
	// errNotLoggedIn is returned by commands that need a stored session.
	errNotLoggedIn = errors.New("not logged in, run the login command first")

	// errAccessDenied makes can-access exit with status 1.
	errAccessDenied = errors.New("access denied")

	// errMissingPassword is returned when neither flag nor environment carry a password.
	errMissingPassword = errors.New("password is required")
)
