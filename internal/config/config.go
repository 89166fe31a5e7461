// Package config loads housekeeper settings from a YAML file, a .env file
// and the environment.
package config

import (
	"time"

	"housekeeper/internal/domain/purge"
)

// Config is the complete housekeeper configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Purge    PurgeConfig    `yaml:"purge"`
	Feature  FeatureConfig  `yaml:"feature"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	URL              string        `yaml:"url"`
	TablePrefix      string        `yaml:"table_prefix"`
	MaxConns         int32         `yaml:"max_conns"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// PurgeConfig holds retention defaults and chunking.
type PurgeConfig struct {
	DaysOld             int   `yaml:"days_old"`
	WindowSize          int64 `yaml:"window_size"`
	CheckpointThreshold int64 `yaml:"checkpoint_threshold"`
}

// ChunkPolicy converts the chunking settings.
func (p PurgeConfig) ChunkPolicy() purge.ChunkPolicy {
	return purge.ChunkPolicy{
		WindowSize:          p.WindowSize,
		CheckpointThreshold: p.CheckpointThreshold,
	}
}

// Feature toggle sources.
const (
	FeatureSourceConfig   = "config"
	FeatureSourceSettings = "settings"
)

// FeatureConfig selects where the housekeeping toggle comes from.
type FeatureConfig struct {
	// Source is "config" (use Enabled) or "settings" (read the integration
	// settings table).
	Source      string `yaml:"source"`
	Enabled     bool   `yaml:"enabled"`
	Integration string `yaml:"integration"`
}

// ScheduleConfig drives `housekeeper schedule`.
type ScheduleConfig struct {
	Cron    string   `yaml:"cron"`
	Listen  string   `yaml:"listen"`
	Targets []string `yaml:"targets"`
	DryRun  bool     `yaml:"dry_run"`
	// Optimize runs VACUUM (ANALYZE) after each successful run.
	Optimize bool `yaml:"optimize"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration with every default applied. The
// housekeeping toggle starts off and must be enabled explicitly.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns:         4,
			StatementTimeout: 5 * time.Minute,
		},
		Purge: PurgeConfig{
			DaysOld:             365,
			WindowSize:          purge.DefaultWindowSize,
			CheckpointThreshold: purge.DefaultCheckpointThreshold,
		},
		Feature: FeatureConfig{
			Source:      FeatureSourceConfig,
			Integration: "Housekeeping",
		},
		Schedule: ScheduleConfig{
			Cron:   "0 3 * * *",
			Listen: ":9090",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
