// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "PROPDESK_CONFIG_JSON"

// Store drivers.
const (
	DriverSQLite        = "sqlite"
	DriverMySQL         = "mysql"
	DriverPostgres      = "postgres"
	DriverFiberMySQL    = "fiber-mysql"
	DriverFiberPostgres = "fiber-postgres"
	DriverMemory        = "memory"
)

// Defaults applied by validate.
const (
	DefaultCheckInterval = 5 * time.Second
	DefaultRefreshLeeway = 30 * time.Second
	DefaultStoreTTL      = 24 * time.Hour
	DefaultTimeout       = 10 * time.Second
	DefaultShutDownTime  = 5
	DefaultHomeRoute     = "/dashboard"
	DefaultLoginRoute    = "/login"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the session core can not run without and
// fills in defaults for the optional ones.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Backend.URL == "" {
		return errors.Wrap(ErrEmptyBackendURL, invalidErrMessage)
	}

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Token.CheckInterval < 0 || c.Token.RefreshLeeway < 0 || c.Store.DefaultTTL < 0 || c.Backend.Timeout < 0 {
		return errors.Wrap(ErrNegativeDuration, invalidErrMessage)
	}

	switch c.Store.Driver {
	case "":
		c.Store.Driver = DriverSQLite
	case DriverSQLite, DriverMySQL, DriverPostgres, DriverFiberMySQL, DriverFiberPostgres, DriverMemory:
	default:
		return errors.Wrapf(ErrUnknownStoreDriver, "%s: %q", invalidErrMessage, c.Store.Driver)
	}

	if c.Token.CheckInterval == 0 {
		c.Token.CheckInterval = DefaultCheckInterval
	}

	if c.Token.RefreshLeeway == 0 {
		c.Token.RefreshLeeway = DefaultRefreshLeeway
	}

	if c.Store.DefaultTTL == 0 {
		c.Store.DefaultTTL = DefaultStoreTTL
	}

	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultTimeout
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = DefaultShutDownTime
	}

	if c.Webserver.HomeRoute == "" {
		c.Webserver.HomeRoute = DefaultHomeRoute
	}

	if c.Webserver.LoginRoute == "" {
		c.Webserver.LoginRoute = DefaultLoginRoute
	}

	return nil
}
