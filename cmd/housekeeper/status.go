package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"housekeeper/pkg/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row and vacuum statistics of the purged tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := logger.WithLogger(cmdContext(cmd), log)
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		stats, err := a.maintenance.TableStats(ctx, a.tables())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-40s %12s %12s  %-20s %-20s\n", "TABLE", "LIVE", "DEAD", "LAST VACUUM", "LAST ANALYZE")
		for _, s := range stats {
			fmt.Fprintf(out, "%-40s %12d %12d  %-20s %-20s\n",
				s.Table, s.LiveRows, s.DeadRows,
				formatTime(latest(s.LastVacuum, s.LastAutovacuum)),
				formatTime(s.LastAnalyze),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// latest returns the later of two optional timestamps.
func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.DateTime)
}
