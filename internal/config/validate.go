package config

import (
	"errors"
	"fmt"

	"housekeeper/internal/domain/purge"
	"housekeeper/internal/scheduler"
	"housekeeper/pkg/logger"
)

// Validate checks the configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required (or set DATABASE_URL)"))
	}
	if !purge.ValidPrefix(cfg.Database.TablePrefix) {
		errs = append(errs, fmt.Errorf("database.table_prefix %q may contain only letters, digits and underscore", cfg.Database.TablePrefix))
	}
	if cfg.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_conns must be positive, got %d", cfg.Database.MaxConns))
	}
	if cfg.Database.StatementTimeout < 0 {
		errs = append(errs, fmt.Errorf("database.statement_timeout must not be negative, got %s", cfg.Database.StatementTimeout))
	}

	if cfg.Purge.DaysOld < 0 {
		errs = append(errs, fmt.Errorf("purge.days_old must not be negative, got %d", cfg.Purge.DaysOld))
	}
	if err := cfg.Purge.ChunkPolicy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("purge: %w", err))
	}

	switch cfg.Feature.Source {
	case FeatureSourceConfig, FeatureSourceSettings:
	default:
		errs = append(errs, fmt.Errorf("feature.source must be %q or %q, got %q", FeatureSourceConfig, FeatureSourceSettings, cfg.Feature.Source))
	}
	if cfg.Feature.Source == FeatureSourceSettings && cfg.Feature.Integration == "" {
		errs = append(errs, errors.New("feature.integration is required when feature.source is settings"))
	}

	if err := scheduler.ValidateSpec(cfg.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
	}
	registry := purge.MustDefaultRegistry()
	for _, id := range cfg.Schedule.Targets {
		if _, err := registry.Lookup(purge.TargetID(id)); err != nil {
			errs = append(errs, fmt.Errorf("schedule.targets: %w", err))
		}
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
