// Package backend is the HTTP client for the property-management API.
//
// It covers the endpoints the session core consumes: login, refresh,
// token info, the current user and the user/screen/permission catalog.
// Every non-2xx response is returned as a *StatusError that unwraps to one
// of the sentinel errors, so callers classify failures with errors.Is.
package backend
