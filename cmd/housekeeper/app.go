package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"housekeeper/internal/config"
	"housekeeper/internal/core/feature"
	"housekeeper/internal/domain/purge"
	"housekeeper/internal/infrastructure/metrics"
	"housekeeper/internal/infrastructure/storage/postgres"
	"housekeeper/internal/infrastructure/storage/postgres/purge_repo"
	"housekeeper/pkg/logger"
)

// app holds the wired dependencies shared by the subcommands.
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	pool        *postgres.Pool
	txm         *postgres.TxManager
	service     *purge.Service
	maintenance *postgres.Maintenance
	metrics     *prometheus.Registry
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Level,
		Development: cfg.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// newApp connects to the database and wires the purge service.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	log.Debugw("database connection established", "max_conns", poolCfg.MaxConns)

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.Database.StatementTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service, err := purge.NewService(
		purge.MustDefaultRegistry(),
		purge_repo.NewRepo(txm),
		txm,
		newFlagProvider(cfg.Feature, cfg.Database.TablePrefix, txm),
		purge.WithChunkPolicy(cfg.Purge.ChunkPolicy()),
		purge.WithTablePrefix(cfg.Database.TablePrefix),
		purge.WithObserver(metrics.NewRecorder(reg)),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		log:         log,
		pool:        pool,
		txm:         txm,
		service:     service,
		maintenance: postgres.NewMaintenance(txm),
		metrics:     reg,
	}, nil
}

// newFlagProvider picks the housekeeping toggle backend.
func newFlagProvider(cfg config.FeatureConfig, prefix string, db postgres.QuerierProvider) feature.Provider {
	if cfg.Source == config.FeatureSourceSettings {
		return postgres.NewSettingsFlags(db, prefix, cfg.Integration)
	}
	flags := feature.NewInMemoryFlags()
	flags.SetFlag(feature.FlagHousekeeping, cfg.Enabled)
	return flags
}

// tables lists the prefixed catalogue tables.
func (a *app) tables() []string {
	return a.service.Registry().Tables(a.cfg.Database.TablePrefix)
}

// housekeep runs one estimate (dryRun) or execute pass and optionally
// vacuums the catalogue tables afterwards.
func (a *app) housekeep(ctx context.Context, req purge.Request, dryRun, optimize bool) (*purge.Report, bool, error) {
	run := a.service.Execute
	if dryRun {
		run = a.service.Estimate
	}
	report, err := run(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if !optimize || report.Disabled {
		return report, false, nil
	}

	if err := a.maintenance.Optimize(ctx, a.tables()); err != nil {
		return report, false, fmt.Errorf("table optimization failed: %w", err)
	}
	return report, true, nil
}

// Close releases the pool.
func (a *app) Close(ctx context.Context) {
	postgres.LogPoolStats(ctx, a.pool.Pool)
	a.pool.Close()
}
