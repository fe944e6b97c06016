package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/httpfs"

	btclog "github.com/btcsuite/btclog/v2"
)

const (
	// LatestMigrationVersion is the latest migration version of the
	// database. This is used to implement downgrade protection for the
	// daemon.
	//
	// NOTE: This MUST be updated when a new migration is added.
	LatestMigrationVersion uint = 1
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationTarget is a functional option that can be passed to
// ApplyMigrations to specify a target version to migrate to.
type MigrationTarget func(mig *migrate.Migrate) error

var (
	// TargetLatest is a MigrationTarget that migrates to the latest
	// version available.
	TargetLatest = func(mig *migrate.Migrate) error {
		return mig.Up()
	}

	// TargetVersion returns a MigrationTarget that migrates to the
	// given version.
	TargetVersion = func(version uint) MigrationTarget {
		return func(mig *migrate.Migrate) error {
			return mig.Migrate(version)
		}
	}
)

// ErrMigrationDowngrade is returned when a database downgrade is
// detected.
var ErrMigrationDowngrade = errors.New("database downgrade detected")

// migrationLogger adapts the package logger to the migrate.Logger
// interface.
type migrationLogger struct {
	log btclog.Logger
}

// Printf implements the migrate.Logger interface.
func (m *migrationLogger) Printf(format string, v ...any) {
	// Trim trailing newlines from the format.
	format = strings.TrimRight(format, "\n")
	m.log.Infof(format, v...)
}

// Verbose returns true when verbose logging is enabled.
func (m *migrationLogger) Verbose() bool {
	return true
}

// ApplyMigrations executes the embedded migration files against the
// given database, up to or down to the given target version. Dirty
// databases and downgrades are refused rather than repaired: both need
// explicit operator intervention.
func ApplyMigrations(db *sql.DB, targetVersion MigrationTarget) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("unable to create migration driver: %w",
			err)
	}

	// Create a new migration source using the embedded file system.
	migrateFileServer, err := httpfs.New(
		http.FS(migrationsFS), "migrations",
	)
	if err != nil {
		return err
	}

	// Create the migration instance with our driver and source.
	sqlMigrate, err := migrate.NewWithInstance(
		"migrations", migrateFileServer, "revq", driver,
	)
	if err != nil {
		return err
	}

	migrationVersion, dirty, err := sqlMigrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to determine current migration "+
			"version: %w", err)
	}

	// A dirty version means a previous migration did not complete;
	// proceeding could corrupt data.
	if dirty {
		return fmt.Errorf("database is in a dirty state at "+
			"version %v, manual intervention required",
			migrationVersion)
	}

	// As the down migrations may end up *dropping* data, we want to
	// prevent that without explicit accounting.
	if migrationVersion > LatestMigrationVersion {
		return fmt.Errorf("%w: database version is newer than "+
			"the latest migration version: db_version=%v, "+
			"latest_migration_version=%v",
			ErrMigrationDowngrade, migrationVersion,
			LatestMigrationVersion)
	}

	log.Infof("Attempting to apply migration(s), "+
		"current_db_version=%v, latest_migration_version=%v",
		migrationVersion, LatestMigrationVersion)

	// Apply our local logger to the migration instance.
	sqlMigrate.Log = &migrationLogger{log}

	// Execute the migration based on the target given.
	err = targetVersion(sqlMigrate)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	newVersion, _, err := sqlMigrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to get new db version: %w", err)
	}
	log.Infof("Database version after migration: %v", newVersion)

	return nil
}
