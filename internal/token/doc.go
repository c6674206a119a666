// Package token manages the lifecycle of the session's access token.
//
// The Manager is the only writer of the credential store while a session is
// active. It refreshes the access token before it expires, exchanges the
// refresh token at most once at a time, and runs the periodic validity check
// that forces a logout when the backend rejects the token.
//
//	NoToken -> Valid -> Refreshing -> Valid | Invalid
package token
