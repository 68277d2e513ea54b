package database

import (
	"context"
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SchemaVersion is the schema version this build expects on disk
const SchemaVersion uint = 4

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the database at path up to SchemaVersion. When the on-disk
// schema cannot be migrated (dirty, unknown version, unversioned legacy table or
// a failing step) every table is dropped and the schema is created from scratch.
func Migrate(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrap(err, "open database for migration")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping database")
	}

	err = migrateUp(db)
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Str("database", path).Msg("schema migration failed, resetting storage")

	if err := resetSchema(ctx, db); err != nil {
		return err
	}
	if err := migrateUp(db); err != nil {
		return errors.Wrap(err, "recreate schema")
	}
	log.Info().Uint("version", SchemaVersion).Msg("storage recreated")
	return nil
}

// MigrateTo moves the schema to an exact version without the destructive
// fallback. It exists to stage older layouts.
func MigrateTo(path string, version uint) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrap(err, "open database for migration")
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrapf(err, "migrate to version %d", version)
	}
	return nil
}

// CurrentSchemaVersion reports the schema version stored at path
func CurrentSchemaVersion(path string) (uint, bool, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, false, errors.Wrap(err, "open database")
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func migrateUp(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Debug().Msg("fresh database, creating schema")
	case err != nil:
		return errors.Wrap(err, "read schema version")
	case dirty:
		return errors.Errorf("schema version %d is dirty", version)
	case version > SchemaVersion:
		return errors.Errorf("schema version %d has no migration path to %d", version, SchemaVersion)
	default:
		log.Debug().Uint("from", version).Uint("to", SchemaVersion).Msg("checking schema")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, errors.Wrap(err, "create migrator")
	}
	return m, nil
}

// resetSchema drops every user table, including the migrations table
func resetSchema(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return errors.Wrap(err, "list tables")
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return errors.Wrap(err, "scan table name")
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "list tables")
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS "`+table+`"`); err != nil {
			return errors.Wrapf(err, "drop table %s", table)
		}
	}
	log.Debug().Strs("tables", tables).Msg("dropped tables")
	return nil
}
