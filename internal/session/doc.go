// Package session is the facade the console surfaces depend on.
//
// A Session owns the login and logout flows. It wires the token manager to
// the credential store, loads the permissions of the user on session start,
// owns the periodic token validator and answers CanAccess, IsAdmin and
// IsAuthenticated.
//
// Every login and logout starts a new epoch. Calls that resolve after the
// epoch they started in has ended are discarded instead of mutating the
// session.
package session
