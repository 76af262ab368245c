package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Schema versions.
const (
	SchemaBase     uint = 1 // financial_data table, indexes, updated_at trigger
	SchemaExtended uint = 2 // investment_income column
)

// Migrator applies the embedded schema versions to a database file.
type Migrator struct {
	dbPath string
}

func NewMigrator(dbPath string) *Migrator {
	return &Migrator{dbPath: dbPath}
}

// withInstance opens a dedicated connection for fn. migrate.Close closes the
// handle it was given, so the repository connection is never shared.
func (m *Migrator) withInstance(fn func(*migrate.Migrate) error) error {
	db, err := sql.Open("sqlite", dsn(m.dbPath))
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer mg.Close()

	return fn(mg)
}

// Version returns the recorded schema version. ok is false when no version
// has ever been recorded.
func (m *Migrator) Version() (version uint, ok bool, err error) {
	err = m.withInstance(func(mg *migrate.Migrate) error {
		v, dirty, verr := mg.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("read schema version: %w", verr)
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version, ok = v, true
		return nil
	})
	return version, ok, err
}

// EnsureVersion migrates up to target unless the database is already there
// or beyond. It reports whether anything was applied.
func (m *Migrator) EnsureVersion(target uint) (applied bool, err error) {
	err = m.withInstance(func(mg *migrate.Migrate) error {
		current, dirty, verr := mg.Version()
		switch {
		case errors.Is(verr, migrate.ErrNilVersion):
		case verr != nil:
			return fmt.Errorf("read schema version: %w", verr)
		case dirty:
			return fmt.Errorf("schema version %d is dirty", current)
		case current >= target:
			return nil
		}

		if merr := mg.Migrate(target); merr != nil && !errors.Is(merr, migrate.ErrNoChange) {
			return fmt.Errorf("migrate to version %d: %w", target, merr)
		}
		applied = true
		return nil
	})
	return applied, err
}

// Force records version without running any migration. Used to reconcile the
// version table with a schema that was built outside of it.
func (m *Migrator) Force(version uint) error {
	return m.withInstance(func(mg *migrate.Migrate) error {
		if err := mg.Force(int(version)); err != nil {
			return fmt.Errorf("force schema version %d: %w", version, err)
		}
		return nil
	})
}
