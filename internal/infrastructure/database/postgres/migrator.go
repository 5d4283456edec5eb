package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// database driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file:// source driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	pkgerrors "github.com/turtacn/coalition-intelligence/pkg/errors"
)

// migrationFS holds the schema shipped with the binary.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// ─────────────────────────────────────────────────────────────────────────────
// Migration source
// ─────────────────────────────────────────────────────────────────────────────

// migrateURL rewrites a postgres:// DSN to the pgx5:// scheme expected by the
// golang-migrate pgx driver.
func migrateURL(dbURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(dbURL, scheme)
		}
	}
	return dbURL
}

// newMigrate opens a migrate instance. An empty migrationsPath selects the
// embedded migrations; otherwise it is a source URL such as
// "file://migrations".
func newMigrate(dbURL, migrationsPath string) (*migrate.Migrate, error) {
	if migrationsPath != "" {
		m, err := migrate.New(migrationsPath, migrateURL(dbURL))
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, "failed to create migrate instance").WithDetail(migrationsPath)
		}
		return m, nil
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dbURL))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, "failed to create migrate instance")
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Up
// ─────────────────────────────────────────────────────────────────────────────

// RunMigrations applies every pending migration. No pending migrations is
// not an error.
func RunMigrations(dbURL string, migrationsPath string) error {
	m, err := newMigrate(dbURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, "failed to run migrations")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Down
// ─────────────────────────────────────────────────────────────────────────────

// RollbackMigration reverts the given number of migrations.
func RollbackMigration(dbURL string, migrationsPath string, steps int) error {
	if steps <= 0 {
		return pkgerrors.InvalidParam(fmt.Sprintf("steps must be greater than 0, got %d", steps))
	}

	m, err := newMigrate(dbURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return pkgerrors.New(pkgerrors.CodeDatabaseError, "no migrations to roll back")
		}
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, fmt.Sprintf("failed to rollback %d step(s)", steps))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Status
// ─────────────────────────────────────────────────────────────────────────────

// MigrationStatus returns the applied version (0 when none) and whether a
// failed migration left the schema dirty.
func MigrationStatus(dbURL string, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := newMigrate(dbURL, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, "failed to get migration version")
	}
	return version, dirty, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Force
// ─────────────────────────────────────────────────────────────────────────────

// ForceMigrationVersion records version as applied without running anything.
// It is the recovery path for a dirty schema.
func ForceMigrationVersion(dbURL string, migrationsPath string, version int) error {
	m, err := newMigrate(dbURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Force(version); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabaseError, fmt.Sprintf("failed to force version %d", version))
	}
	return nil
}

//Personal.AI order the ending
