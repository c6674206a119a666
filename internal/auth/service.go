package auth

import (
	"sort"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// View is the permission data the engine reads. permission.Snapshot
// implements it.
type View interface {
	// PermissionsFor returns the permission edges of one user.
	PermissionsFor(userID models.ID) []models.Permission
	// Screen looks up a screen of the catalog.
	Screen(id models.ID) (models.Screen, bool)
	// Screens returns the whole catalog.
	Screens() []models.Screen
}

// IsAdmin reports whether user holds the admin role. A nil user is not an admin.
func IsAdmin(user *models.User) bool {
	return user.IsAdmin()
}

// CanAccess reports whether user may open route.
// Admins may open every route. Other users need a permission edge to an
// ACTIVE screen whose route equals route exactly. A nil user is denied, and
// so is a non-admin asking for an empty route or without a view.
func CanAccess(user *models.User, route string, view View) bool {
	if user == nil {
		return false
	}

	if user.IsAdmin() {
		return true
	}

	if route == "" || view == nil {
		return false
	}

	for _, p := range view.PermissionsFor(user.ID) {
		if p.UserID != user.ID {
			continue
		}

		screen, ok := view.Screen(p.ScreenID)
		if !ok {
			continue
		}

		if screen.IsActive() && screen.Route == route {
			return true
		}
	}

	return false
}

// CanAccessAny reports whether user may open at least one of routes.
func CanAccessAny(user *models.User, view View, routes ...string) bool {
	for _, route := range routes {
		if CanAccess(user, route, view) {
			return true
		}
	}

	return false
}

// CanAccessAll reports whether user may open every one of routes.
// It is true for an empty list.
func CanAccessAll(user *models.User, view View, routes ...string) bool {
	for _, route := range routes {
		if !CanAccess(user, route, view) {
			return false
		}
	}

	return true
}

// AccessibleRoutes returns the sorted, de-duplicated routes of the ACTIVE
// screens user may open. For admins this is every active screen of the catalog.
func AccessibleRoutes(user *models.User, view View) []string {
	if user == nil || view == nil {
		return nil
	}

	seen := make(map[string]struct{})

	if user.IsAdmin() {
		catalog := view.Screens()
		for i := range catalog {
			if catalog[i].IsActive() {
				seen[catalog[i].Route] = struct{}{}
			}
		}
	} else {
		for _, p := range view.PermissionsFor(user.ID) {
			if screen, ok := view.Screen(p.ScreenID); ok && screen.IsActive() {
				seen[screen.Route] = struct{}{}
			}
		}
	}

	routes := make([]string, 0, len(seen))
	for route := range seen {
		routes = append(routes, route)
	}

	sort.Strings(routes)

	return routes
}
