package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations collects the ledger schema. Each file registering into it must
// be named <version>_<comment>.go; bun derives the migration name from it.
var Migrations = migrate.NewMigrations()

// Run applies all pending migrations and returns the name of the applied
// group, or "" when the schema was already current.
func Run(ctx context.Context, db *bun.DB) (string, error) {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return "", fmt.Errorf("init migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}

	if group.IsZero() {
		return "", nil
	}
	return group.String(), nil
}
