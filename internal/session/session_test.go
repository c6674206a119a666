package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/backend/backendtest"
	"github.com/PropDesk/PropDesk-Console/internal/credential"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/token"
)

// recorder collects navigation and notice signals.
type recorder struct {
	mu      sync.Mutex
	routes  []string
	notices []string
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = append(r.routes, route)
}

func (r *recorder) Notify(_ Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, message)
}

func (r *recorder) lastRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.routes) == 0 {
		return ""
	}

	return r.routes[len(r.routes)-1]
}

func (r *recorder) noticeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.notices)
}

type fixture struct {
	srv      *backendtest.Server
	store    *credential.Store
	rec      *recorder
	sess     *Session
	interval time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureWithInterval(t, 10*time.Millisecond)
}

func newFixtureWithInterval(t *testing.T, interval time.Duration) *fixture {
	t.Helper()

	f := &fixture{srv: backendtest.New(t), rec: &recorder{}, interval: interval}

	f.srv.AddUser(models.User{ID: "u", Email: "una@propdesk.io", FirstName: "Una", Role: models.RoleUser}, "pw")
	f.srv.AddUser(models.User{ID: "a", Email: "ada@propdesk.io", FirstName: "Ada", Role: models.RoleAdmin}, "pw")
	f.srv.AddScreen(models.Screen{ID: "s1", Name: "Tenants", Route: auth.RouteTenants, Status: models.ScreenActive})
	f.srv.AddScreen(models.Screen{ID: "s2", Name: "Vendors", Route: auth.RouteVendors, Status: models.ScreenInactive})
	f.srv.Grant("u", "s1")
	f.srv.Grant("u", "s2")

	var err error

	f.store, err = credential.New(credential.NewMemoryBackend())
	require.NoError(t, err)

	f.sess = f.newSession(t)

	return f
}

func (f *fixture) newSession(t *testing.T) *Session {
	t.Helper()

	client, err := backend.New(f.srv.Config())
	require.NoError(t, err)

	sess, err := New(f.store, client, Options{
		CheckInterval: f.interval,
		Navigator:     f.rec,
		Notifier:      f.rec,
	})
	require.NoError(t, err)

	t.Cleanup(sess.Close)

	return sess
}

func TestNew_MissingDependency(t *testing.T) {
	_, err := New(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

// The stored token pair is exactly the pair returned by the login call.
func TestLogin_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)

	access, refresh := f.srv.LastIssued()
	assert.Equal(t, access, cred.AccessToken)
	assert.Equal(t, refresh, cred.RefreshToken)

	assert.True(t, f.sess.IsAuthenticated())
	assert.False(t, f.sess.IsAdmin())
	assert.Equal(t, "Una", f.sess.CurrentUser().FirstName)
	assert.Equal(t, auth.RouteDashboard, f.rec.lastRoute())

	cached, err := f.store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ID("u"), cached.ID)
}

func TestLogin_CanAccess(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sess.Login(context.Background(), "una@propdesk.io", "pw"))

	assert.True(t, f.sess.CanAccess(auth.RouteTenants))
	assert.False(t, f.sess.CanAccess(auth.RouteVendors), "inactive screen")
	assert.False(t, f.sess.CanAccess(auth.RouteDashboard), "no screen assigned")
	assert.Equal(t, []string{auth.RouteTenants}, f.sess.AccessibleRoutes())

	assert.True(t, f.sess.CanAccessAny(auth.RouteVendors, auth.RouteTenants))
	assert.False(t, f.sess.CanAccessAll(auth.RouteVendors, auth.RouteTenants))
	assert.True(t, f.sess.CanAccessAll(auth.RouteTenants))
}

func TestLogin_Admin(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sess.Login(context.Background(), "ada@propdesk.io", "pw"))

	assert.True(t, f.sess.IsAdmin())
	assert.True(t, f.sess.CanAccess(auth.RouteDashboard))
	assert.True(t, f.sess.CanAccess(auth.RouteVendors))
	assert.Len(t, f.sess.Snapshot().Users(), 2)
}

func TestLogin_FailureLeavesCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SaveCredential(ctx, models.Credential{AccessToken: "old", RefreshToken: "old-r"}, false))

	err := f.sess.Login(ctx, "una@propdesk.io", "wrong")
	require.ErrorIs(t, err, backend.ErrUnauthorized)

	f.srv.Fail(backendtest.Login, http.StatusBadGateway)
	require.Error(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", cred.AccessToken)
	assert.Equal(t, "old-r", cred.RefreshToken)

	assert.False(t, f.sess.IsAuthenticated())
	assert.Equal(t, 2, f.rec.noticeCount())
	assert.Contains(t, f.rec.notices[0], "Invalid email or password")
}

func TestLogin_FallsBackToLoginUser(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(backendtest.CurrentUser, http.StatusInternalServerError)

	require.NoError(t, f.sess.Login(context.Background(), "una@propdesk.io", "pw"))
	assert.Equal(t, models.ID("u"), f.sess.CurrentUser().ID)
	assert.True(t, f.sess.CanAccess(auth.RouteTenants))
}

func TestLogin_PermissionLoadFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(backendtest.Permissions, http.StatusInternalServerError)

	require.NoError(t, f.sess.Login(context.Background(), "una@propdesk.io", "pw"))
	assert.True(t, f.sess.IsAuthenticated())
	assert.False(t, f.sess.CanAccess(auth.RouteTenants))
	assert.Equal(t, 1, f.rec.noticeCount())

	f.srv.Fail(backendtest.Permissions, 0)

	require.NoError(t, f.sess.RefreshPermissions(context.Background()))
	assert.True(t, f.sess.CanAccess(auth.RouteTenants))
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	f.sess.Logout(ctx)
	f.sess.Logout(ctx)

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.True(t, cred.Empty())

	user, err := f.store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.False(t, f.sess.IsAuthenticated())
	assert.False(t, f.sess.CanAccess(auth.RouteTenants))
	assert.Nil(t, f.sess.CurrentUser())
	assert.Equal(t, auth.RouteLogin, f.rec.lastRoute())

	f.sess.mu.RLock()
	assert.Nil(t, f.sess.validator)
	f.sess.mu.RUnlock()

	calls := f.srv.Calls(backendtest.TokenInfo)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, f.srv.Calls(backendtest.TokenInfo), "validator still running after logout")
}

func TestRepeatedLoginKeepsOneValidator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))
	}

	f.sess.Logout(ctx)
	calls := f.srv.Calls(backendtest.TokenInfo)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, f.srv.Calls(backendtest.TokenInfo))
}

// An unauthorized validity check empties the store and logs the session
// out within one tick.
func TestValidatorForcesLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	f.srv.RevokeAll()

	assert.Eventually(t, func() bool {
		cred, err := f.store.LoadCredential(ctx)
		return err == nil && cred.Empty() && !f.sess.IsAuthenticated()
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return f.rec.lastRoute() == auth.RouteLogin
	}, time.Second, 5*time.Millisecond)
}

func TestRefreshToken(t *testing.T) {
	// the validator must not see the revoked token before the refresh does
	f := newFixtureWithInterval(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	before, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)

	require.NoError(t, f.sess.RefreshToken(ctx))

	after, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.True(t, f.sess.IsAuthenticated())

	f.srv.RevokeAll()

	require.ErrorIs(t, f.sess.RefreshToken(ctx), backend.ErrRefreshTokenExpired)
	assert.False(t, f.sess.IsAuthenticated())
	assert.Equal(t, auth.RouteLogin, f.rec.lastRoute())
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.sess.Restore(ctx), token.ErrAuthenticationRequired)

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))
	f.sess.Close()

	restarted := f.newSession(t)
	require.NoError(t, restarted.Restore(ctx))
	assert.True(t, restarted.IsAuthenticated())
	assert.True(t, restarted.CanAccess(auth.RouteTenants))

	// a revoked token ends the restored session
	restarted.Close()
	f.srv.RevokeAll()

	again := f.newSession(t)
	require.Error(t, again.Restore(ctx))
	assert.False(t, again.IsAuthenticated())

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.True(t, cred.Empty())
}

func TestAssignScreens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sess.AssignScreens(ctx, "u", []models.ID{"s1"}, false)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	_, err = f.sess.AssignScreens(ctx, "u", []models.ID{"s1"}, false)
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.sess.Login(ctx, "ada@propdesk.io", "pw"))

	res, err := f.sess.AssignScreens(ctx, "u", []models.ID{"s1"}, true)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"s2"}, res.Removed)
	assert.Len(t, f.srv.PermissionsOf("u"), 1)
}

func TestRefreshPermissions_NotAuthenticated(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.sess.RefreshPermissions(context.Background()), ErrNotAuthenticated)
}

func TestSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.sess.Selection(ctx, "u")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, f.sess.Login(ctx, "ada@propdesk.io", "pw"))

	described, selected, err := f.sess.Selection(ctx, "u")
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.ID{"s1", "s2"}, selected)
	require.Len(t, described, 2)

	for _, d := range described {
		assert.Equal(t, "Una", d.UserLabel)
		assert.False(t, d.Orphaned)
	}
}

func TestScreenCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	_, err := f.sess.CreateScreen(ctx, models.Screen{Name: "Reports", Route: auth.RouteReports})
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.sess.Login(ctx, "ada@propdesk.io", "pw"))

	created, err := f.sess.CreateScreen(ctx, models.Screen{Name: "Reports", Route: auth.RouteReports})
	require.NoError(t, err)

	_, ok := f.sess.Snapshot().Screen(created.ID)
	assert.True(t, ok)

	require.NoError(t, f.sess.DeleteScreen(ctx, created.ID))

	_, ok = f.sess.Snapshot().Screen(created.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, f.sess.DeleteScreen(ctx, created.ID), backend.ErrNotFound)
}

// A 401 from any authorized call ends the session like a rejected token.
func TestUnauthorizedForcesLogout(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		call     func(context.Context, *Session) error
	}{
		{"refresh permissions", backendtest.Screens, func(ctx context.Context, s *Session) error {
			return s.RefreshPermissions(ctx)
		}},
		{"selection", backendtest.Permissions, func(ctx context.Context, s *Session) error {
			_, _, err := s.Selection(ctx, "u")
			return err
		}},
		{"assign screens", backendtest.Permissions, func(ctx context.Context, s *Session) error {
			_, err := s.AssignScreens(ctx, "u", []models.ID{"s1"}, false)
			return err
		}},
		{"create screen", backendtest.Screens, func(ctx context.Context, s *Session) error {
			_, err := s.CreateScreen(ctx, models.Screen{Name: "Reports", Route: auth.RouteReports})
			return err
		}},
		{"delete screen", backendtest.Screens, func(ctx context.Context, s *Session) error {
			return s.DeleteScreen(ctx, "s1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWithInterval(t, time.Hour)
			ctx := context.Background()

			require.NoError(t, f.sess.Login(ctx, "ada@propdesk.io", "pw"))
			f.srv.Fail(tt.endpoint, http.StatusUnauthorized)

			require.ErrorIs(t, tt.call(ctx, f.sess), backend.ErrUnauthorized)

			assert.False(t, f.sess.IsAuthenticated())
			assert.Nil(t, f.sess.CurrentUser())
			assert.Equal(t, auth.RouteLogin, f.rec.lastRoute())

			cred, err := f.store.LoadCredential(ctx)
			require.NoError(t, err)
			assert.True(t, cred.Empty())

			f.sess.mu.RLock()
			assert.Nil(t, f.sess.validator)
			f.sess.mu.RUnlock()
		})
	}
}

func TestLogin_UnauthorizedPermissionLoad(t *testing.T) {
	f := newFixtureWithInterval(t, time.Hour)
	ctx := context.Background()

	f.srv.Fail(backendtest.Permissions, http.StatusUnauthorized)

	require.ErrorIs(t, f.sess.Login(ctx, "una@propdesk.io", "pw"), token.ErrAuthenticationRequired)
	assert.False(t, f.sess.IsAuthenticated())

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.True(t, cred.Empty())
}

// An invalidation of credentials a later login replaced leaves the new
// session alone.
func TestStaleInvalidationIgnored(t *testing.T) {
	f := newFixtureWithInterval(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))
	stale := f.sess.tokens.Generation()

	require.NoError(t, f.sess.Login(ctx, "una@propdesk.io", "pw"))

	f.sess.tokens.Invalidate(ctx, stale, backend.ErrUnauthorized)
	f.sess.onInvalid(token.Invalidation{Generation: stale, Cause: backend.ErrUnauthorized})

	assert.True(t, f.sess.IsAuthenticated())
	assert.Equal(t, auth.RouteDashboard, f.rec.lastRoute())
	assert.Equal(t, 0, f.rec.noticeCount())

	cred, err := f.store.LoadCredential(ctx)
	require.NoError(t, err)
	assert.False(t, cred.Empty())

	// the current generation still logs out
	f.sess.onInvalid(token.Invalidation{Generation: f.sess.tokens.Generation(), Cause: backend.ErrUnauthorized})
	assert.False(t, f.sess.IsAuthenticated())
	assert.Equal(t, auth.RouteLogin, f.rec.lastRoute())
}
