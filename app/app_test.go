package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend/backendtest"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

const testConfigTemplate = `Title = "PropDesk Console"

[Log]
LogLevel = "error"
AppName = "propdesk-console"
ServiceName = "propdesk-console"

[Backend]
URL = %q
Timeout = "5s"

[Token]
CheckInterval = "1h"

[Store]
Driver = "sqlite"

[DB]
Path = %q

[Webserver]
Port = 8080
`

func writeConfig(t *testing.T, srv *backendtest.Server) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(testConfigTemplate, srv.Config().URL, filepath.Join(dir, "console.db"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600))

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestCommands(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser(models.User{ID: "u", Email: "una@propdesk.io", FirstName: "Una", LastName: "Lee"}, "pw")
	srv.AddUser(models.User{ID: "a", Email: "ada@propdesk.io", FirstName: "Ada", Role: models.RoleAdmin}, "pw")
	srv.AddScreen(models.Screen{ID: "s1", Name: "Tenants", Route: auth.RouteTenants, Status: models.ScreenActive})
	srv.AddScreen(models.Screen{ID: "s2", Name: "Vendors", Route: auth.RouteVendors, Status: models.ScreenActive})
	srv.Grant("u", "s1")

	dir := writeConfig(t, srv)

	_, err := run(t, "whoami", "--config", dir)
	require.ErrorIs(t, err, errNotLoggedIn)

	_, err = run(t, "login", "--config", dir, "--email", "una@propdesk.io", "--password", "nope")
	require.Error(t, err)

	out, err := run(t, "login", "--config", dir, "--email", "una@propdesk.io", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Una Lee (user)")
	assert.Contains(t, out, "routes: "+auth.RouteTenants)

	out, err = run(t, "whoami", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Una Lee (user)")

	out, err = run(t, "can-access", auth.RouteTenants, "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "allowed: "+auth.RouteTenants)

	_, err = run(t, "can-access", auth.RouteVendors, "--config", dir)
	require.ErrorIs(t, err, errAccessDenied)

	_, err = run(t, "can-access", auth.RouteTenants, auth.RouteVendors, "--config", dir)
	require.ErrorIs(t, err, errAccessDenied)

	out, err = run(t, "can-access", auth.RouteVendors, auth.RouteTenants, "--any", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "allowed: "+auth.RouteVendors+" "+auth.RouteTenants)

	canAccessAny = false

	_, err = run(t, "permissions", "assign", "--config", dir, "--user", "u", "--screen", "s2")
	require.Error(t, err)

	_, err = run(t, "login", "--config", dir, "--email", "ada@propdesk.io", "--password", "pw")
	require.NoError(t, err)

	out, err = run(t, "permissions", "assign", "--config", dir, "--user", "u", "--screen", "s1", "--screen", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "created: s2")
	assert.Contains(t, out, "unchanged: s1")
	assert.Len(t, srv.PermissionsOf("u"), 2)

	out, err = run(t, "logout", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	_, err = run(t, "whoami", "--config", dir)
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestConfigDump(t *testing.T) {
	srv := backendtest.New(t)
	dir := writeConfig(t, srv)

	out, err := run(t, "config", "dump", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[Backend]")
	assert.Contains(t, out, srv.Config().URL)

	out, err = run(t, "config", "dump", "--json", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"Backend": {`)

	dumpJSON = false
}
