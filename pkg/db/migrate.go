package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"bigcommerce-sdk/pkg/config"
)

// DefaultMigrationsPath is used when MIGRATIONS_PATH is unset.
const DefaultMigrationsPath = "file://migrations"

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func MigrateUp(cfg config.Config) error {
	return run(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back steps migrations.
func MigrateDown(cfg config.Config, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return run(cfg, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

// Version reports the applied schema version. ok is false on a fresh database.
func Version(cfg config.Config) (version uint, dirty bool, ok bool, err error) {
	err = run(cfg, func(m *migrate.Migrate) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return verr
		}
		version, dirty, ok = v, d, true
		return nil
	})
	return version, dirty, ok, err
}

func migrationsPath(cfg config.Config) string {
	if cfg.MigrationsPath != "" {
		return cfg.MigrationsPath
	}
	return DefaultMigrationsPath
}

func run(cfg config.Config, fn func(*migrate.Migrate) error) error {
	m, err := migrate.New(migrationsPath(cfg), MigrationConnString(cfg))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
