package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Login exchanges email and password for a token pair. The embedded user is
// kept only when it passes validation.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Login,
		body:   credentials{Email: email, Password: password},
		result: &res,
	})
	if err != nil {
		return nil, err
	}

	if err := models.Validate(&res.TokenPair); err != nil {
		return nil, fmt.Errorf("%w: login: %w", ErrInvalidResponse, err)
	}

	if res.User != nil {
		if err := models.Validate(res.User); err != nil {
			log.Warn().Err(err).Msg("ignoring invalid user in login response")

			res.User = nil
		} else {
			c.normalizeUser(res.User)
		}
	}

	return &res, nil
}

// Refresh exchanges the refresh token for a new token pair. The refresh
// token is the bearer credential of this call; a 401 means it expired.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Refresh,
		bearer: refreshToken,
		body:   map[string]string{"refreshToken": refreshToken},
		result: &pair,
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
			se.kind = ErrRefreshTokenExpired
		}

		return nil, err
	}

	if err := models.Validate(&pair); err != nil {
		return nil, fmt.Errorf("%w: refresh: %w", ErrInvalidResponse, err)
	}

	return &pair, nil
}

// TokenInfo asks the backend whether accessToken is still valid. A 2xx
// response without a valid field counts as valid.
func (c *Client) TokenInfo(ctx context.Context, accessToken string) (bool, error) {
	var info tokenInfo

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.TokenInfo,
		bearer: accessToken,
		result: &info,
	})
	if err != nil {
		return false, err
	}

	return info.Valid == nil || *info.Valid, nil
}

// CurrentUser returns the profile of the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.CurrentUser,
		result: &user,
	})
	if err != nil {
		return nil, err
	}

	if err := models.Validate(&user); err != nil {
		return nil, fmt.Errorf("%w: current user: %w", ErrInvalidResponse, err)
	}

	c.normalizeUser(&user)

	return &user, nil
}

func (c *Client) normalizeUser(u *models.User) {
	if c.emailHeuristic {
		u.ApplyEmailHeuristic()
	}
}
