package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads variables from the given .env files (".env" when none
// given). Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration and validates the result.
//
// The loading sequence is:
// 1. Start from default values
// 2. Load YAML from file (skipped when path is empty)
// 3. Apply environment variable overrides
// 4. Validate final configuration
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
// DATABASE_URL, LOG_LEVEL and APP_ENV keep their conventional names;
// everything else uses HOUSEKEEPER_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	boolean := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int64) {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = i
		}
	}
	duration := func(key string, dst *time.Duration) {
		if val := os.Getenv(key); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("DATABASE_URL", &cfg.Database.URL)
	str("HOUSEKEEPER_DATABASE_URL", &cfg.Database.URL)
	str("HOUSEKEEPER_TABLE_PREFIX", &cfg.Database.TablePrefix)
	duration("HOUSEKEEPER_STATEMENT_TIMEOUT", &cfg.Database.StatementTimeout)

	daysOld := int64(cfg.Purge.DaysOld)
	integer("HOUSEKEEPER_DAYS_OLD", &daysOld)
	cfg.Purge.DaysOld = int(daysOld)
	integer("HOUSEKEEPER_WINDOW_SIZE", &cfg.Purge.WindowSize)
	integer("HOUSEKEEPER_CHECKPOINT_THRESHOLD", &cfg.Purge.CheckpointThreshold)

	str("HOUSEKEEPER_FEATURE_SOURCE", &cfg.Feature.Source)
	str("HOUSEKEEPER_FEATURE_INTEGRATION", &cfg.Feature.Integration)
	boolean("HOUSEKEEPER_ENABLED", &cfg.Feature.Enabled)

	str("HOUSEKEEPER_SCHEDULE", &cfg.Schedule.Cron)
	str("HOUSEKEEPER_LISTEN", &cfg.Schedule.Listen)

	str("LOG_LEVEL", &cfg.Log.Level)
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Log.Development = env == "development"
	}

	return errors.Join(errs...)
}
