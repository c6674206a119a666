package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetworkUnavailable is returned when the backend can not be reached (connection refused, timeout).
	ErrNetworkUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshTokenExpired is returned when the refresh endpoint rejects the refresh token.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrValidation is returned for 400 and 422 responses.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for 409 responses, e.g. a permission that already exists.
	ErrConflict = errors.New("already exists")

	// ErrUnexpectedStatus is returned for every other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidResponse is returned when a 2xx body can not be decoded or fails validation.
	ErrInvalidResponse = errors.New("invalid backend response")

	// ErrEmptyBaseURL is returned when the client is created without a base url.
	ErrEmptyBaseURL = errors.New("backend url can not be empty")
)

// StatusError is a non-2xx response of the backend.
type StatusError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int
	// Method and Path identify the failed request.
	Method string
	Path   string
	// Message is the error description from the response body, if any.
	Message string

	kind error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.kind)
	}

	return fmt.Sprintf("%s %s: HTTP %d: %s: %s", e.Method, e.Path, e.StatusCode, e.kind, e.Message)
}

// Unwrap returns the sentinel the status code maps to.
func (e *StatusError) Unwrap() error {
	return e.kind
}

// newStatusError maps a status code onto the error taxonomy.
func newStatusError(method, path string, status int, message string) *StatusError {
	var kind error

	switch status {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusConflict:
		kind = ErrConflict
	default:
		kind = ErrUnexpectedStatus
	}

	return &StatusError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    message,
		kind:       kind,
	}
}

// IsAuthFailure reports whether err means the credentials were rejected.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRefreshTokenExpired)
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var se *StatusError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetworkUnavailable):
		return "The server is unavailable. Please try again later."
	case errors.Is(err, ErrRefreshTokenExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrUnauthorized):
		return "You are not logged in. Please log in again."
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, ErrNotFound):
		return "The requested item does not exist."
	case errors.Is(err, ErrConflict):
		return "The item already exists."
	case errors.Is(err, ErrValidation):
		return "The request was rejected by the server."
	}

	return "Something went wrong. Please try again."
}
