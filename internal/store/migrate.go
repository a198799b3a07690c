package store

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// migrationTarget is what a backend provides to have migrations applied.
type migrationTarget interface {
	ensureMigrationsTable(ctx context.Context) error
	migrationApplied(ctx context.Context, version string) (bool, error)
	// applyMigration runs the migration and records its version atomically.
	applyMigration(ctx context.Context, version, sql string) error
}

// runMigrations applies pending SQL migrations from dir in order.
// Migrations are tracked in a schema_migrations table.
// There are no down migrations; fix forward only.
func runMigrations(ctx context.Context, dir string, target migrationTarget) error {
	if err := target.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename (lexicographic order gives us version order).
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version := entry.Name()

		applied, err := target.migrationApplied(ctx, version)
		if err != nil {
			return fmt.Errorf("checking migration %s: %w", version, err)
		}
		if applied {
			continue
		}

		sql, err := migrationsFS.ReadFile(path.Join(dir, version))
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", version, err)
		}

		if err := target.applyMigration(ctx, version, string(sql)); err != nil {
			return fmt.Errorf("applying migration %s: %w", version, err)
		}
	}

	return nil
}
