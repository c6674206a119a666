package token

// State is the authentication status of the session.
type State int32

const (
	// NoToken means no access token is stored.
	NoToken State = iota
	// Valid means an access token is stored and was not rejected.
	Valid
	// Refreshing means a refresh token exchange is in flight.
	Refreshing
	// Invalid means the backend rejected the credentials; the store was cleared.
	Invalid
)

func (s State) String() string {
	switch s {
	case NoToken:
		return "no_token"
	case Valid:
		return "valid"
	case Refreshing:
		return "refreshing"
	case Invalid:
		return "invalid"
	}

	return "unknown"
}
