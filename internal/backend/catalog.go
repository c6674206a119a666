package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// ListUsers returns every user. Records failing validation are dropped.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User

	if err := c.do(ctx, request{method: http.MethodGet, path: c.endpoints.Users, result: &users}); err != nil {
		return nil, err
	}

	users = keepValid(users, "user")

	for i := range users {
		c.normalizeUser(&users[i])
	}

	return users, nil
}

// ListScreens returns the screen catalog. Records failing validation are dropped.
func (c *Client) ListScreens(ctx context.Context) ([]models.Screen, error) {
	var screens []models.Screen

	if err := c.do(ctx, request{method: http.MethodGet, path: c.endpoints.Screens, result: &screens}); err != nil {
		return nil, err
	}

	return keepValid(screens, "screen"), nil
}

// CreateScreen adds a screen to the catalog and returns the stored record.
func (c *Client) CreateScreen(ctx context.Context, s models.Screen) (*models.Screen, error) {
	var created models.Screen

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Screens,
		body: screenRequest{
			Name:        s.Name,
			Description: s.Description,
			Route:       s.Route,
			Status:      s.Status,
		},
		result: &created,
	})
	if err != nil {
		return nil, err
	}

	if err := models.Validate(&created); err != nil {
		return nil, fmt.Errorf("%w: create screen: %w", ErrInvalidResponse, err)
	}

	return &created, nil
}

// DeleteScreen removes a screen from the catalog.
func (c *Client) DeleteScreen(ctx context.Context, id models.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(c.endpoints.Screens, id.String())})
}

// ListPermissions returns the permission edges of one user.
func (c *Client) ListPermissions(ctx context.Context, userID models.ID) ([]models.Permission, error) {
	var permissions []models.Permission

	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   resourcePath(c.endpoints.Permissions, "user", userID.String()),
		result: &permissions,
	})
	if err != nil {
		return nil, err
	}

	return keepValid(permissions, "permission"), nil
}

// CreatePermission grants userID access to screenID.
func (c *Client) CreatePermission(ctx context.Context, userID, screenID models.ID) (*models.Permission, error) {
	var created models.Permission

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Permissions,
		body:   permissionRequest{UserID: userID, ScreenID: screenID},
		result: &created,
	})
	if err != nil {
		return nil, err
	}

	if err := models.Validate(&created); err != nil {
		return nil, fmt.Errorf("%w: create permission: %w", ErrInvalidResponse, err)
	}

	return &created, nil
}

// DeletePermission removes one permission edge.
func (c *Client) DeletePermission(ctx context.Context, id models.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: resourcePath(c.endpoints.Permissions, id.String())})
}

func keepValid[T any](items []T, kind string) []T {
	valid, err := models.ValidateAll(items)
	if err != nil {
		log.Warn().Err(err).
			Str("kind", kind).
			Int("dropped", len(items)-len(valid)).
			Msg("dropping invalid records from backend response")
	}

	return valid
}
