package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/config"
	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/models"
	"github.com/mkoziy/hdxinfo/internal/report"
)

// DownloadsFetcher returns dataset id -> downloads in [from, to].
type DownloadsFetcher interface {
	GetDownloads(ctx context.Context, from, to time.Time) (map[string]int, error)
}

// CatalogLister returns every dataset in catalog order.
type CatalogLister interface {
	GetAllDatasets(ctx context.Context) ([]models.Dataset, error)
}

// Result summarizes a successful run for the caller to report.
type Result struct {
	RunID         string
	OutputDir     string
	Datasets      int
	ScriptUpdated int
	WithDownloads int
	Months        int
}

// Runner produces the dataset reports.
type Runner struct {
	cfg       config.Config
	downloads DownloadsFetcher
	catalog   CatalogLister
	ledger    Ledger
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLedger records every run in l.
func WithLedger(l Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// WithMetrics records run metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a runner.
func New(cfg config.Config, downloads DownloadsFetcher, catalog CatalogLister, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		downloads: downloads,
		catalog:   catalog,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches downloads, then lists the catalog, then writes both reports.
// The previous output directory is replaced only if every step succeeds.
func (r *Runner) Run(ctx context.Context) (res Result, err error) {
	now := r.now().UTC()
	from, to := r.cfg.Window(now)

	run := &models.ReportRun{
		RunID:       uuid.NewString(),
		OutputDir:   r.cfg.OutputDir,
		WindowStart: from,
		WindowEnd:   to,
		StartTime:   now,
	}
	logger := r.logger.With(zap.String("run_id", run.RunID))

	if r.ledger != nil {
		r.logPrevious(ctx, logger)
		if err := r.ledger.Start(ctx, run); err != nil {
			return Result{}, fmt.Errorf("record run start: %w", err)
		}
	}

	var monthly *report.MonthlyCounts
	defer func() {
		end := r.now().UTC()
		run.Finish(end, err)
		r.metrics.ObserveRun(now, end, err)
		if r.ledger == nil {
			return
		}
		var months []*models.MonthlyActivity
		if monthly != nil {
			months = monthly.Activity()
		}
		// the run outcome is already decided; record it even if ctx is done
		if lerr := r.ledger.Finish(context.WithoutCancel(ctx), run, months); lerr != nil {
			logger.Error("failed to record run", zap.Error(lerr))
		}
	}()

	staging, err := report.Stage(r.cfg.OutputDir)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if aerr := staging.Abort(); aerr != nil {
			logger.Warn("failed to clean staging directory", zap.Error(aerr))
		}
	}()

	logger.Info("Getting downloads from MixPanel",
		zap.Time("from", from), zap.Time("to", to))
	downloads, err := r.downloads.GetDownloads(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("get downloads: %w", err)
	}

	logger.Info("Examining all datasets")
	datasets, err := r.catalog.GetAllDatasets(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list datasets: %w", err)
	}

	builder := report.NewBuilder(r.cfg.HDXSiteURL, downloads, now, r.metrics)
	for i := range datasets {
		if err := builder.Add(&datasets[i]); err != nil {
			return Result{}, fmt.Errorf("build row: %w", err)
		}
	}

	writer := report.NewWriter(logger, r.metrics)
	if err := writer.WriteDatasets(staging.Dir(), builder.Rows()); err != nil {
		return Result{}, err
	}
	if err := writer.WriteMonthly(staging.Dir(), builder.Monthly()); err != nil {
		return Result{}, err
	}
	if err := staging.Commit(); err != nil {
		return Result{}, err
	}
	monthly = builder.Monthly()

	total, scripted, withDownloads := builder.Stats()
	run.DatasetsTotal = total
	run.DatasetsScripted = scripted
	run.DatasetsWithDownloads = withDownloads

	return Result{
		RunID:         run.RunID,
		OutputDir:     r.cfg.OutputDir,
		Datasets:      total,
		ScriptUpdated: scripted,
		WithDownloads: withDownloads,
		Months:        len(monthly.Keys()),
	}, nil
}

func (r *Runner) logPrevious(ctx context.Context, logger *zap.Logger) {
	prev, err := r.ledger.Previous(ctx)
	if err != nil {
		logger.Debug("no previous successful run", zap.Error(err))
		return
	}
	logger.Info("Previous successful run",
		zap.String("previous_run_id", prev.RunID),
		zap.Time("started", prev.StartTime),
		zap.Int("datasets", prev.DatasetsTotal))
}
