// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/PropDesk/PropDesk-Console/internal/config"
)

// Gorm engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// DefaultSQLitePath is used when no sqlite file is configured.
const DefaultSQLitePath = "propdesk-console.db"

// ErrUnknownEngine is returned for an unsupported gorm engine.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Create builds the MySQL Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// Postgres builds the PostgreSQL connection URI from the configuration.
func Postgres(dbCfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(dbCfg.DB.User, dbCfg.DB.Password),
		Host:   fmt.Sprintf("%s:%d", dbCfg.DB.Host, dbCfg.DB.Port),
		Path:   "/" + dbCfg.DB.Name,
	}

	if dbCfg.DB.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{dbCfg.DB.SSLMode}}.Encode()
	}

	return u.String()
}

// SQLite returns the sqlite database file, falling back to DefaultSQLitePath.
func SQLite(dbCfg *config.Config) string {
	if dbCfg.DB.Path == "" {
		return DefaultSQLitePath
	}

	return dbCfg.DB.Path
}

// Dialector returns the gorm dialector for the given engine.
func Dialector(dbCfg *config.Config, engine string) (gorm.Dialector, error) {
	switch engine {
	case EngineSQLite, "":
		return sqlite.Open(SQLite(dbCfg)), nil
	case EngineMySQL:
		return gormmysql.Open(Create(dbCfg)), nil
	case EnginePostgres:
		return gormpostgres.Open(Postgres(dbCfg)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
}
