package permission

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/backend/backendtest"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

func newRepo(t *testing.T, opts ...Option) (*Repository, *backendtest.Server) {
	t.Helper()

	srv := backendtest.New(t)
	srv.AddUser(models.User{ID: "u", Email: "u@propdesk.io", FirstName: "Una", LastName: "User"}, "pw")
	srv.AddUser(models.User{ID: "admin", Email: "admin@propdesk.io", Role: models.RoleAdmin}, "pw")
	srv.AddScreen(models.Screen{ID: "s1", Name: "Tenants", Route: auth.RouteTenants, Status: models.ScreenActive})
	srv.AddScreen(models.Screen{ID: "s2", Name: "Reports", Route: auth.RouteReports, Status: models.ScreenActive})
	srv.AddScreen(models.Screen{ID: "s3", Name: "Vendors", Route: auth.RouteVendors, Status: models.ScreenInactive})

	access, _ := srv.IssueTokens("admin")

	client, err := backend.New(srv.Config())
	require.NoError(t, err)

	repo, err := NewRepository(client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access})), opts...)
	require.NoError(t, err)

	return repo, srv
}

func screenIDs(perms []models.Permission) []models.ID {
	out := make([]models.ID, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.ScreenID)
	}

	sortIDs(out)

	return out
}

func TestNewRepository(t *testing.T) {
	_, err := NewRepository(nil)
	assert.ErrorIs(t, err, ErrCatalogNil)
}

func TestLoadAll(t *testing.T) {
	repo, srv := newRepo(t)
	ctx := context.Background()

	srv.Grant("u", "s1")

	screens, err := repo.LoadAllScreens(ctx)
	require.NoError(t, err)
	assert.Len(t, screens, 3)

	users, err := repo.LoadAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	perms, err := repo.LoadPermissionsForUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s1"}, screenIDs(perms))

	snap := repo.Snapshot()
	assert.True(t, auth.CanAccess(&models.User{ID: "u"}, auth.RouteTenants, snap))
	assert.False(t, auth.CanAccess(&models.User{ID: "u"}, auth.RouteReports, snap))

	_, err = repo.LoadPermissionsForUser(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestLoadFailuresDegradeToEmpty(t *testing.T) {
	repo, srv := newRepo(t)
	ctx := context.Background()

	srv.Grant("u", "s1")

	_, err := repo.LoadAllScreens(ctx)
	require.NoError(t, err)
	_, err = repo.LoadPermissionsForUser(ctx, "u")
	require.NoError(t, err)

	srv.Fail(backendtest.Screens, http.StatusInternalServerError)
	srv.Fail(backendtest.Users, http.StatusInternalServerError)
	srv.Fail(backendtest.Permissions, http.StatusInternalServerError)

	screens, err := repo.LoadAllScreens(ctx)
	require.ErrorIs(t, err, backend.ErrUnexpectedStatus)
	assert.NotNil(t, screens)
	assert.Empty(t, screens)

	users, err := repo.LoadAllUsers(ctx)
	require.Error(t, err)
	assert.Empty(t, users)

	perms, err := repo.LoadPermissionsForUser(ctx, "u")
	require.Error(t, err)
	assert.Empty(t, perms)

	assert.Empty(t, repo.Snapshot().Screens())
	assert.Empty(t, repo.CurrentSelection("u"))
}

func TestCreateAndDeletePermission(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	p, err := repo.CreatePermission(ctx, "u", "s2")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s2"}, repo.CurrentSelection("u"))

	_, err = repo.CreatePermission(ctx, "u", "missing")
	require.ErrorIs(t, err, backend.ErrNotFound)

	_, err = repo.CreatePermission(ctx, "ghost", "s1")
	require.ErrorIs(t, err, backend.ErrNotFound)

	require.NoError(t, repo.DeletePermission(ctx, p.ID))
	assert.Empty(t, repo.CurrentSelection("u"))

	require.ErrorIs(t, repo.DeletePermission(ctx, p.ID), backend.ErrNotFound)
}

// bulkAssign followed by a reload yields exactly the submitted screens,
// also when the same set is submitted again.
func TestBulkAssign_ExactSetWithoutDuplicates(t *testing.T) {
	repo, srv := newRepo(t)
	ctx := context.Background()

	res, err := repo.BulkAssign(ctx, "u", []models.ID{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s1", "s2"}, res.Created)

	res, err = repo.BulkAssign(ctx, "u", []models.ID{"s1", "s2", "s2"})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, []models.ID{"s1", "s2"}, res.Unchanged)

	perms, err := repo.LoadPermissionsForUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s1", "s2"}, screenIDs(perms))
	assert.Len(t, srv.PermissionsOf("u"), 2)
}

func TestBulkAssign_AdditiveByDefault(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.BulkAssign(ctx, "u", []models.ID{"s1", "s2"})
	require.NoError(t, err)

	res, err := repo.BulkAssign(ctx, "u", []models.ID{"s1"})
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.Equal(t, []models.ID{"s1", "s2"}, repo.CurrentSelection("u"))
}

// conflictCatalog answers every create with "already exists".
type conflictCatalog struct {
	Catalog
}

func (conflictCatalog) CreatePermission(context.Context, models.ID, models.ID) (*models.Permission, error) {
	return nil, backend.ErrConflict
}

func TestBulkAssign_ToleratesConflicts(t *testing.T) {
	base, _ := newRepo(t)

	repo, err := NewRepository(conflictCatalog{base.catalog})
	require.NoError(t, err)

	res, err := repo.BulkAssign(context.Background(), "u", []models.ID{"s1", "s2"})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, []models.ID{"s1", "s2"}, res.Unchanged)
	assert.Empty(t, res.Failed)
}

func TestBulkAssign_PartialFailure(t *testing.T) {
	repo, _ := newRepo(t)

	res, err := repo.BulkAssign(context.Background(), "u", []models.ID{"s1", "nope"})
	require.ErrorIs(t, err, backend.ErrNotFound)
	require.NotNil(t, res)
	assert.Equal(t, []models.ID{"s1"}, res.Created)
	assert.Contains(t, res.Failed, models.ID("nope"))
	assert.Equal(t, []models.ID{"s1"}, repo.CurrentSelection("u"))
}

func TestReconcile(t *testing.T) {
	repo, srv := newRepo(t)
	ctx := context.Background()

	_, err := repo.BulkAssign(ctx, "u", []models.ID{"s1", "s2"})
	require.NoError(t, err)

	res, err := repo.Reconcile(ctx, "u", []models.ID{"s2", "s3"})
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s3"}, res.Created)
	assert.Equal(t, []models.ID{"s1"}, res.Removed)
	assert.Equal(t, []models.ID{"s2", "s3"}, repo.CurrentSelection("u"))
	assert.Len(t, srv.PermissionsOf("u"), 2)
}

func TestBulkAssign_PruneOption(t *testing.T) {
	repo, _ := newRepo(t, WithPruneOnBulkAssign(true))
	ctx := context.Background()

	_, err := repo.BulkAssign(ctx, "u", []models.ID{"s1", "s2"})
	require.NoError(t, err)

	res, err := repo.BulkAssign(ctx, "u", nil)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s1", "s2"}, res.Removed)
	assert.Empty(t, repo.CurrentSelection("u"))
}

func TestScreens(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.LoadAllScreens(ctx)
	require.NoError(t, err)

	created, err := repo.CreateScreen(ctx, models.Screen{Name: "Invoices", Route: auth.RouteInvoices})
	require.NoError(t, err)

	_, err = repo.CreatePermission(ctx, "u", created.ID)
	require.NoError(t, err)

	snap := repo.Snapshot()
	_, ok := snap.Screen(created.ID)
	assert.True(t, ok)
	assert.True(t, auth.CanAccess(&models.User{ID: "u"}, auth.RouteInvoices, snap))

	require.NoError(t, repo.DeleteScreen(ctx, created.ID))

	snap = repo.Snapshot()
	_, ok = snap.Screen(created.ID)
	assert.False(t, ok)
	assert.Empty(t, snap.PermissionsFor("u"))

	_, err = repo.CreateScreen(ctx, models.Screen{Name: "No route"})
	assert.ErrorIs(t, err, backend.ErrValidation)
}

func TestSnapshotIsImmutable(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	before := repo.Snapshot()

	_, err := repo.CreatePermission(ctx, "u", "s1")
	require.NoError(t, err)

	assert.Empty(t, before.PermissionsFor("u"))
	assert.Len(t, repo.Snapshot().PermissionsFor("u"), 1)

	edges := repo.Snapshot().PermissionsFor("u")
	edges[0].ScreenID = "tampered"
	assert.Equal(t, models.ID("s1"), repo.Snapshot().PermissionsFor("u")[0].ScreenID)
}

func TestDescribe(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.LoadAllScreens(ctx)
	require.NoError(t, err)
	_, err = repo.LoadAllUsers(ctx)
	require.NoError(t, err)

	snap := repo.Snapshot()

	d := snap.Describe(models.Permission{ID: "p", UserID: "u", ScreenID: "s1"})
	assert.Equal(t, "Una User", d.UserLabel)
	assert.Equal(t, "Tenants", d.ScreenLabel)
	assert.Equal(t, auth.RouteTenants, d.Route)
	assert.False(t, d.Orphaned)

	d = snap.Describe(models.Permission{ID: "p", UserID: "gone", ScreenID: "gone"})
	assert.Equal(t, models.UnknownUserLabel, d.UserLabel)
	assert.Equal(t, models.UnknownScreenLabel, d.ScreenLabel)
	assert.True(t, d.Orphaned)
}

func TestResetDiscardsLateResults(t *testing.T) {
	repo, _ := newRepo(t)

	gen := repo.begin()
	repo.Reset()

	err := repo.apply(gen, func(s *Snapshot) {
		s.screens["late"] = models.Screen{ID: "late"}
	})
	require.ErrorIs(t, err, ErrStale)

	_, ok := repo.Snapshot().Screen("late")
	assert.False(t, ok)
}
