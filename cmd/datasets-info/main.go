package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/config"
	"github.com/mkoziy/hdxinfo/internal/database"
	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/migrations"
	"github.com/mkoziy/hdxinfo/internal/ratelimit"
	"github.com/mkoziy/hdxinfo/internal/runner"
	"github.com/mkoziy/hdxinfo/internal/sources/hdx"
	"github.com/mkoziy/hdxinfo/internal/sources/mixpanel"
)

const applicationName = "datasets-info"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	paths, err := config.DefaultPaths()
	if err == nil {
		err = run(ctx, os.Args[1:], paths)
	}
	stop()

	switch {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, paths config.Paths) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(paths, opts.OutputDir)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	m := metrics.New()

	hdxClient := hdx.NewClient(cfg.HDXSiteURL, cfg.UserAgent,
		limiterFor(cfg, ratelimit.SourceHDX, logger), m, logger.Named("hdx"))
	mpClient := mixpanel.NewClient(cfg.MixpanelURL, cfg.MixpanelAPISecret,
		limiterFor(cfg, ratelimit.SourceMixpanel, logger), m, logger.Named("mixpanel"))

	runOpts := []runner.Option{runner.WithMetrics(m)}
	if cfg.LedgerDSN != "" {
		db, err := database.Open(cfg.LedgerDSN, cfg.LedgerDebug)
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()
		group, err := migrations.Run(ctx, db)
		if err != nil {
			return err
		}
		if group != "" {
			logger.Info("Migrated run ledger", zap.String("group", group))
		}
		runOpts = append(runOpts, runner.WithLedger(runner.NewDBLedger(db)))
	}

	r := runner.New(cfg,
		mixpanel.NewFetcher(mpClient, logger.Named("mixpanel")),
		hdx.NewFetcher(hdxClient, cfg.PageSize, logger.Named("hdx")),
		logger,
		runOpts...,
	)

	res, runErr := r.Run(ctx)

	if err := m.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL); err != nil {
		logger.Warn("metrics not pushed", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("run failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("Reports written",
		zap.String("run_id", res.RunID),
		zap.String("output_dir", res.OutputDir),
		zap.Int("datasets", res.Datasets),
		zap.Int("script_updated", res.ScriptUpdated),
		zap.Int("with_downloads", res.WithDownloads),
		zap.Int("months", res.Months))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named(applicationName), nil
}

func limiterFor(cfg config.Config, source string, logger *zap.Logger) ratelimit.Limiter {
	if _, ok := cfg.RateLimits.Get(source); !ok {
		logger.Debug("using default rate limit", zap.String("source", source))
	}
	return cfg.RateLimits.Limiter(source)
}
