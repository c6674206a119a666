package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.Equal(t, "http://localhost:3000/api/", cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "auth/test-token", cfg.Backend.Endpoints.TokenInfo)
	assert.Equal(t, 5*time.Second, cfg.Token.CheckInterval)
	assert.Equal(t, 30*time.Second, cfg.Token.RefreshLeeway)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Store.DefaultTTL)
	assert.Equal(t, "sqlite", cfg.DB.GormEngine)
	assert.Equal(t, "info.log", cfg.Log.File.InfoLog)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "info", cfg.Log.Components["token"])
	assert.False(t, cfg.Auth.AdminEmailHeuristic)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				Backend:   Backend{URL: "http://localhost:3000/api/"},
				Webserver: Webserver{Port: 8080},
			},
		},
		{
			name: "missing backend url",
			config: Config{
				Webserver: Webserver{Port: 8080},
			},
			wantErr: ErrEmptyBackendURL,
		},
		{
			name: "missing port",
			config: Config{
				Backend: Backend{URL: "http://localhost:3000/api/"},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "unknown driver",
			config: Config{
				Backend:   Backend{URL: "http://localhost:3000/api/"},
				Webserver: Webserver{Port: 8080},
				Store:     Store{Driver: "etcd"},
			},
			wantErr: ErrUnknownStoreDriver,
		},
		{
			name: "negative interval",
			config: Config{
				Backend:   Backend{URL: "http://localhost:3000/api/"},
				Webserver: Webserver{Port: 8080},
				Token:     Token{CheckInterval: -time.Second},
			},
			wantErr: ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		Backend:   Backend{URL: "http://localhost:3000/api/"},
		Webserver: Webserver{Port: 8080},
	}

	require.NoError(t, validate(&cfg))

	assert.Equal(t, DefaultCheckInterval, cfg.Token.CheckInterval)
	assert.Equal(t, DefaultRefreshLeeway, cfg.Token.RefreshLeeway)
	assert.Equal(t, DefaultStoreTTL, cfg.Store.DefaultTTL)
	assert.Equal(t, DefaultTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, DefaultHomeRoute, cfg.Webserver.HomeRoute)
	assert.Equal(t, DefaultLoginRoute, cfg.Webserver.LoginRoute)
	assert.Equal(t, DefaultShutDownTime, cfg.Webserver.ShutDownTime)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090},"Auth":{"AdminEmailHeuristic":true}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.True(t, cfg.Auth.AdminEmailHeuristic)
	// untouched values survive the merge
	assert.Equal(t, "http://localhost:3000/api/", cfg.Backend.URL)
}

func TestReadConfigWithBrokenJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":`)

	_, err := ReadConfig(projectConfigPath(t))
	assert.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Backend:   Backend{URL: "http://localhost:3000/api/"},
		Webserver: Webserver{Port: 8080},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(tomlStr, "Test"))

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonStr, "http://localhost:3000/api/")
}
