package sqlite

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// ErrDirtySchema reports a migration that previously failed half way. It
// needs manual repair before the service can start.
var ErrDirtySchema = errors.New("sqlite: schema is dirty")

// ApplyMigrations applies any pending migrations from the embedded schema
// files. It is safe to call on every start.
func (s *Store) ApplyMigrations() error {
	instance, err := s.migrator()
	if err != nil {
		return err
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return fmt.Errorf("%w: version %d", ErrDirtySchema, dirty.Version)
		}
		return err
	}

	return nil
}

// SchemaVersion reports the currently applied migration version.
func (s *Store) SchemaVersion() (uint, error) {
	instance, err := s.migrator()
	if err != nil {
		return 0, err
	}

	version, dirty, err := instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, ErrDirtySchema
	}
	return version, nil
}

func (s *Store) migrator() (*migrate.Migrate, error) {
	// 1. The database driver shares our *sql.DB
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, err
	}

	// 2. Schema files are compiled into the binary
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, "sqlite", driver)
}
