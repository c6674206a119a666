package backend

import (
	"encoding/json"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// TokenPair is the token response of the login and refresh endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	// ExpiresIn is the access token lifetime in seconds, zero when the backend omits it.
	ExpiresIn int64 `json:"expiresIn,omitempty"`
}

// UnmarshalJSON accepts camelCase and snake_case token fields.
func (p *TokenPair) UnmarshalJSON(b []byte) error {
	var raw struct {
		AccessToken       string `json:"accessToken"`
		AccessTokenSnake  string `json:"access_token"`
		RefreshToken      string `json:"refreshToken"`
		RefreshTokenSnake string `json:"refresh_token"`
		ExpiresIn         int64  `json:"expiresIn"`
		ExpiresInSnake    int64  `json:"expires_in"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err //nolint:wrapcheck
	}

	p.AccessToken = firstNonEmpty(raw.AccessToken, raw.AccessTokenSnake)
	p.RefreshToken = firstNonEmpty(raw.RefreshToken, raw.RefreshTokenSnake)

	p.ExpiresIn = raw.ExpiresIn
	if p.ExpiresIn == 0 {
		p.ExpiresIn = raw.ExpiresInSnake
	}

	return nil
}

// LoginResult is the response of the login endpoint.
type LoginResult struct {
	TokenPair

	// User is the user embedded in the login response. Nil when absent or invalid.
	User *models.User
}

// UnmarshalJSON decodes the token pair and the embedded user side by side.
func (r *LoginResult) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.TokenPair); err != nil {
		return err //nolint:wrapcheck
	}

	var raw struct {
		User *models.User `json:"user"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err //nolint:wrapcheck
	}

	r.User = raw.User

	return nil
}

// tokenInfo is the response of the token info endpoint.
type tokenInfo struct {
	Valid *bool `json:"valid"`
}

// credentials is the login request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// permissionRequest is the create permission request body.
type permissionRequest struct {
	UserID   models.ID `json:"userId"`
	ScreenID models.ID `json:"screenId"`
}

// screenRequest is the create screen request body.
type screenRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Route       string              `json:"route"`
	Status      models.ScreenStatus `json:"status,omitempty"`
}

// errorBody is the error payload shape of the backend. Message is either a
// string or a list of strings.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
