package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// One row per (date, line, item); is_workday NULL means no flag
		`CREATE TABLE IF NOT EXISTS production_plan (
			plan_date TEXT NOT NULL,
			line TEXT NOT NULL,
			product_name TEXT NOT NULL,
			qty_0 INTEGER NOT NULL DEFAULT 0,
			qty_1 INTEGER NOT NULL DEFAULT 0,
			plt INTEGER NOT NULL DEFAULT 1,
			is_workday INTEGER,
			PRIMARY KEY (plan_date, line, product_name)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_production_plan_date ON production_plan(plan_date)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
