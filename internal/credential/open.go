package credential

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/db/dsn"
)

// OpenBackend creates the backend selected by cfg.Store.Driver.
func OpenBackend(cfg *config.Config) (Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite, config.DriverMySQL, config.DriverPostgres, "":
		engine := cfg.Store.Driver
		if engine == "" {
			engine = cfg.DB.GormEngine
		}

		dialector, err := dsn.Dialector(cfg, engine)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s credential database: %w", engine, err)
		}

		return NewGormBackend(db)
	case config.DriverFiberMySQL:
		return NewFiberMySQLBackend(dsn.Create(cfg), cfg.Store.Table), nil
	case config.DriverFiberPostgres:
		return NewFiberPostgresBackend(dsn.Postgres(cfg), cfg.Store.Table), nil
	case config.DriverMemory:
		log.Warn().Msg("credential store driver is memory: credentials are lost on exit")

		return NewMemoryBackend(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Store.Driver)
}

// Open creates the credential store described by cfg, sealing values when an
// encryption key is configured.
func Open(cfg *config.Config) (*Store, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithDefaultTTL(cfg.Store.DefaultTTL)}

	if cfg.Store.EncryptionKey != "" {
		sealer, err := NewSealer(cfg.Store.EncryptionKey)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}

		opts = append(opts, WithSealer(sealer))
	}

	return New(backend, opts...)
}
