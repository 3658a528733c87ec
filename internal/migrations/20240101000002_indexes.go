package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_report_runs_start_time ON report_runs(start_time DESC)",
			"CREATE INDEX IF NOT EXISTS idx_report_runs_status ON report_runs(status)",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_monthly_activity_run_month ON report_monthly_activity(run_id, year_month)",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_report_runs_start_time",
			"DROP INDEX IF EXISTS idx_report_runs_status",
			"DROP INDEX IF EXISTS idx_monthly_activity_run_month",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	})
}
