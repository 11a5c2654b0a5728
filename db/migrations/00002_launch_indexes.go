package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upLaunchIndexes, downLaunchIndexes)
}

func upLaunchIndexes(ctx context.Context, tx *sql.Tx) error {
	indexes := []string{
		`CREATE INDEX idx_launches_site ON launches (site, seq)`,
		`CREATE INDEX idx_launches_payload ON launches (payload_mass_kg, seq)`,
	}
	for _, stmt := range indexes {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index : %w", err)
		}
	}
	return nil
}

func downLaunchIndexes(ctx context.Context, tx *sql.Tx) error {
	for _, name := range []string{"idx_launches_payload", "idx_launches_site"} {
		if _, err := tx.ExecContext(ctx, "DROP INDEX IF EXISTS "+name); err != nil {
			return fmt.Errorf("dropping index %s : %w", name, err)
		}
	}
	return nil
}
