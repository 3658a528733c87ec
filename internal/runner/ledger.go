package runner

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/mkoziy/hdxinfo/internal/models"
	"github.com/mkoziy/hdxinfo/internal/repositories"
)

// Ledger keeps a history of runs.
type Ledger interface {
	Start(ctx context.Context, run *models.ReportRun) error
	Finish(ctx context.Context, run *models.ReportRun, months []*models.MonthlyActivity) error
	Previous(ctx context.Context) (*models.ReportRun, error)
}

// DBLedger stores runs in a bun database.
type DBLedger struct {
	db *bun.DB
}

// NewDBLedger wraps a migrated database.
func NewDBLedger(db *bun.DB) *DBLedger {
	return &DBLedger{db: db}
}

func (l *DBLedger) Start(ctx context.Context, run *models.ReportRun) error {
	return repositories.StartRun(ctx, l.db, run)
}

func (l *DBLedger) Finish(ctx context.Context, run *models.ReportRun, months []*models.MonthlyActivity) error {
	return repositories.FinishRun(ctx, l.db, run, months)
}

func (l *DBLedger) Previous(ctx context.Context) (*models.ReportRun, error) {
	return repositories.LatestSuccessfulRun(ctx, l.db)
}
