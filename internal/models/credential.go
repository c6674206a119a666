package models

import "time"

// Credential is the token pair held by the credential store.
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
}

// Empty reports whether no access token is present. An empty credential
// means the session is not authenticated.
func (c *Credential) Empty() bool {
	return c == nil || c.AccessToken == ""
}

// NeedsRefresh reports whether the access token expires within leeway of now.
// A credential without a known expiry never needs a local refresh; the
// periodic validity check covers it instead.
func (c *Credential) NeedsRefresh(now time.Time, leeway time.Duration) bool {
	if c.Empty() || c.ExpiresAt.IsZero() {
		return false
	}

	return !now.Add(leeway).Before(c.ExpiresAt)
}
