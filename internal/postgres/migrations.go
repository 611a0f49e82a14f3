package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/mkrhub/controlhub/internal/errors"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migration is one embedded schema change
type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded migrations in version order
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".up.sql")
		migrations = append(migrations, Migration{Version: version, SQL: string(body)})
	}
	return migrations, nil
}

// Migrate applies every embedded migration that is not recorded in
// schema_migrations yet. Each migration runs in its own transaction.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}

	if _, err := db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to create schema_migrations").
			Mark(ierr.ErrDatabase)
	}

	var applied []string
	for _, m := range migrations {
		var exists bool
		if err := db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = ?)", m.Version); err != nil {
			return applied, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		if exists {
			continue
		}

		err := db.WithTx(ctx, func(ctx context.Context) error {
			if _, err := db.GetQuerier(ctx).ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
			return err
		})
		if err != nil {
			return applied, ierr.WithError(err).
				WithMessagef("migration %s failed", m.Version).
				Mark(ierr.ErrDatabase)
		}

		db.logger.Infow("applied migration", "version", m.Version)
		applied = append(applied, m.Version)
	}

	return applied, nil
}
