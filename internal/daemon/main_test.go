package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend/backendtest"
	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/session"
)

func testConfig(t *testing.T, srv *backendtest.Server) *config.Config {
	t.Helper()

	return &config.Config{
		Backend: srv.Config(),
		Token:   config.Token{CheckInterval: time.Hour, RefreshLeeway: time.Second},
		Store: config.Store{
			Driver:        config.DriverSQLite,
			DefaultTTL:    time.Hour,
			EncryptionKey: "daemon-test",
		},
		DB: config.DB{Path: filepath.Join(t.TempDir(), "console.db")},
		Webserver: config.Webserver{
			Port:       8080,
			HomeRoute:  auth.RouteDashboard,
			LoginRoute: auth.RouteLogin,
		},
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNew_UnknownDriver(t *testing.T) {
	srv := backendtest.New(t)
	cfg := testConfig(t, srv)
	cfg.Store.Driver = "etcd"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRestore_AcrossRestarts(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser(models.User{ID: "u", Email: "una@propdesk.io", FirstName: "Una"}, "pw")
	srv.AddScreen(models.Screen{ID: "s1", Name: "Tenants", Route: auth.RouteTenants, Status: models.ScreenActive})
	srv.Grant("u", "s1")

	cfg := testConfig(t, srv)
	ctx := context.Background()

	var routes []string

	first, err := New(cfg, WithNavigator(session.NavigatorFunc(func(route string) {
		routes = append(routes, route)
	})))
	require.NoError(t, err)

	require.NoError(t, first.Restore(ctx), "no stored session is not an error")
	assert.False(t, first.Session().IsAuthenticated())

	require.NoError(t, first.Session().Login(ctx, "una@propdesk.io", "pw"))
	assert.Equal(t, []string{auth.RouteDashboard}, routes)
	require.NoError(t, first.Close())

	second, err := New(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Close() })

	require.NoError(t, second.Restore(ctx))

	sess := second.Session()
	assert.True(t, sess.IsAuthenticated())
	assert.True(t, sess.CanAccess(auth.RouteTenants))
	assert.False(t, sess.CanAccess(auth.RouteVendors))
}

func TestRestore_RevokedTokens(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser(models.User{ID: "u", Email: "una@propdesk.io"}, "pw")

	cfg := testConfig(t, srv)
	ctx := context.Background()

	var notices []string

	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Session().Login(ctx, "una@propdesk.io", "pw"))
	require.NoError(t, first.Close())

	srv.RevokeAll()

	second, err := New(cfg, WithNotifier(session.NotifierFunc(func(_ session.Severity, msg string) {
		notices = append(notices, msg)
	})))
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Close() })

	assert.Error(t, second.Restore(ctx))
	assert.False(t, second.Session().IsAuthenticated())

	// the revoked credentials are gone, the next restore finds nothing
	require.NoError(t, second.Restore(ctx))
	assert.Empty(t, notices)
}
