package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/mkoziy/hdxinfo/internal/models"
)

// StartRun inserts a run in the running state and fills its ID.
func StartRun(ctx context.Context, db bun.IDB, run *models.ReportRun) error {
	run.Status = models.RunRunning
	_, err := db.NewInsert().Model(run).Exec(ctx)
	return err
}

// FinishRun stores the final state of run and, on success, its monthly
// activity rows, in one transaction.
func FinishRun(ctx context.Context, db *bun.DB, run *models.ReportRun, months []*models.MonthlyActivity) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(run).
			Column("end_time", "status", "datasets_total", "datasets_scripted", "datasets_with_downloads", "error_log", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		if run.Status != models.RunSucceeded || len(months) == 0 {
			return nil
		}

		for _, m := range months {
			m.RunID = run.ID
		}
		_, err := tx.NewInsert().Model(&months).Exec(ctx)
		return err
	})
}

// GetRun fetches a run by its public id with its monthly activity.
func GetRun(ctx context.Context, db bun.IDB, runID string) (*models.ReportRun, error) {
	run := new(models.ReportRun)
	err := db.NewSelect().
		Model(run).
		Where("run_id = ?", runID).
		Relation("Months", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("year_month ASC")
		}).
		Scan(ctx)

	return run, err
}

// LatestSuccessfulRun returns the most recent succeeded run, or
// sql.ErrNoRows when there is none.
func LatestSuccessfulRun(ctx context.Context, db bun.IDB) (*models.ReportRun, error) {
	run := new(models.ReportRun)
	err := db.NewSelect().
		Model(run).
		Where("status = ?", models.RunSucceeded).
		OrderExpr("start_time DESC").
		Limit(1).
		Scan(ctx)

	return run, err
}
