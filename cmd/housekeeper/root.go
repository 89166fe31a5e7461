package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"housekeeper/internal/config"
)

var (
	// Global flags
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "housekeeper",
	Short: "Housekeeper - retention purge for event-log tables",
	Long: `Housekeeper deletes event-log rows older than a retention horizon.

Covered tables:
  - campaign_lead_event_log (newest event per lead and campaign is kept)
  - lead_event_log
  - page_hits
  - email_stats of unpublished emails, with their email_stats_devices
  - email_stats.tokens (set to NULL on request)

Deletes run in id windows and commit periodically. The housekeeping
feature must be enabled in the configuration or the integration settings.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
}

// loadConfig reads the dotenv file, the config file and the environment.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	return config.Load(cfgFile)
}
