package permission

import (
	"sort"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Snapshot is an immutable view of the loaded permission data. It
// implements auth.View.
type Snapshot struct {
	screens     map[models.ID]models.Screen
	users       map[models.ID]models.User
	permissions map[models.ID][]models.Permission // by user id
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		screens:     map[models.ID]models.Screen{},
		users:       map[models.ID]models.User{},
		permissions: map[models.ID][]models.Permission{},
	}
}

// clone copies the maps; the slices are shared since they are never
// modified in place.
func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{
		screens:     make(map[models.ID]models.Screen, len(s.screens)),
		users:       make(map[models.ID]models.User, len(s.users)),
		permissions: make(map[models.ID][]models.Permission, len(s.permissions)),
	}

	for k, v := range s.screens {
		out.screens[k] = v
	}

	for k, v := range s.users {
		out.users[k] = v
	}

	for k, v := range s.permissions {
		out.permissions[k] = v
	}

	return out
}

// Screen looks up a screen by id.
func (s *Snapshot) Screen(id models.ID) (models.Screen, bool) {
	sc, ok := s.screens[id]
	return sc, ok
}

// User looks up a user by id.
func (s *Snapshot) User(id models.ID) (models.User, bool) {
	u, ok := s.users[id]
	return u, ok
}

// Screens returns the catalog ordered by route.
func (s *Snapshot) Screens() []models.Screen {
	out := make([]models.Screen, 0, len(s.screens))
	for _, sc := range s.screens {
		out = append(out, sc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Route == out[j].Route {
			return out[i].ID < out[j].ID
		}

		return out[i].Route < out[j].Route
	})

	return out
}

// Users returns the loaded users ordered by id.
func (s *Snapshot) Users() []models.User {
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// PermissionsFor returns a copy of the permission edges of userID.
func (s *Snapshot) PermissionsFor(userID models.ID) []models.Permission {
	edges := s.permissions[userID]
	out := make([]models.Permission, len(edges))
	copy(out, edges)

	return out
}

// ScreenIDsFor returns the ids of the screens assigned to userID, sorted.
func (s *Snapshot) ScreenIDsFor(userID models.ID) []models.ID {
	edges := s.permissions[userID]
	out := make([]models.ID, 0, len(edges))

	for _, p := range edges {
		out = append(out, p.ScreenID)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Description is a permission with display labels resolved.
type Description struct {
	Permission  models.Permission `json:"permission"`
	UserLabel   string            `json:"userLabel"`
	ScreenLabel string            `json:"screenLabel"`
	Route       string            `json:"route,omitempty"`
	Orphaned    bool              `json:"orphaned"`
}

// Describe resolves the labels of p. Permissions referring to a user or
// screen that is not loaded are orphaned and get the Unknown labels.
func (s *Snapshot) Describe(p models.Permission) Description {
	d := Description{
		Permission:  p,
		UserLabel:   models.UnknownUserLabel,
		ScreenLabel: models.UnknownScreenLabel,
	}

	if u, ok := s.users[p.UserID]; ok {
		d.UserLabel = u.FullName()
	} else {
		d.Orphaned = true
	}

	if sc, ok := s.screens[p.ScreenID]; ok {
		d.ScreenLabel = sc.Name
		d.Route = sc.Route
	} else {
		d.Orphaned = true
	}

	return d
}
