package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"housekeeper/internal/core/apperror"
	"housekeeper/internal/domain/purge"
	"housekeeper/pkg/logger"
)

// errTokensCombination is shown when -t is combined with a delete flag.
var errTokensCombination = errors.New(`the combination of the "-t" flag with the "-m", "-c", "-l" or "-p" flag is not supported; ` +
	`"-t" can only be combined with "-d" and "-r"`)

type purgeOptions struct {
	daysOld          int
	dryRun           bool
	campaignLead     bool
	lead             bool
	pageHits         bool
	emailStats       bool
	emailStatsTokens bool
	cmpID            int64
	cmpIDSet         bool
	optimize         bool
	verbose          bool
}

var purgeOpts purgeOptions

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete event-log rows older than the retention horizon",
	Long: `Delete campaign_lead_event_log, lead_event_log, page_hits, email_stats
(only rows whose email is not published) and email_stats_devices rows, or
set email_stats.tokens to NULL when -t is given.

Without a target flag every delete target runs. The -t flag cannot be
combined with -c, -l, -m or -p.`,
	Example: `  housekeeper purge --days-old 365
  housekeeper purge -d 90 --dry-run
  housekeeper purge --cmp-id 123
  housekeeper purge --email-stats-tokens
  housekeeper purge --page-hits --optimize-tables`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	f := purgeCmd.Flags()
	f.IntVarP(&purgeOpts.daysOld, "days-old", "d", 365, "purge records older than this number of days (config purge.days_old when omitted)")
	f.BoolVarP(&purgeOpts.dryRun, "dry-run", "r", false, "count rows without changing anything")
	f.BoolVarP(&purgeOpts.campaignLead, "campaign-lead", "c", false, "purge campaign_lead_event_log")
	f.BoolVarP(&purgeOpts.lead, "lead", "l", false, "purge lead_event_log")
	f.BoolVarP(&purgeOpts.pageHits, "page-hits", "p", false, "purge page_hits")
	f.BoolVarP(&purgeOpts.emailStats, "email-stats", "m", false, "purge email_stats of unpublished emails and their email_stats_devices")
	f.BoolVarP(&purgeOpts.emailStatsTokens, "email-stats-tokens", "t", false, "set email_stats.tokens to NULL")
	f.Int64VarP(&purgeOpts.cmpID, "cmp-id", "i", 0, "purge campaign_lead_event_log of one campaign only (implies --campaign-lead)")
	f.BoolVarP(&purgeOpts.optimize, "optimize-tables", "o", false, "run VACUUM (ANALYZE) on the tables afterwards")
	f.BoolVarP(&purgeOpts.verbose, "verbose", "v", false, "print every statement before it runs")

	rootCmd.AddCommand(purgeCmd)
}

// buildRequest maps command flags to a purge request. With no target flag
// set every operation stays disabled and the registry defaults apply.
func buildRequest(opts purgeOptions) purge.Request {
	req := purge.Request{
		DaysOld: opts.daysOld,
		Operations: purge.OperationSet{
			{Target: purge.CampaignLeadEventLog, Enabled: opts.campaignLead || opts.cmpIDSet},
			{Target: purge.LeadEventLog, Enabled: opts.lead},
			{Target: purge.EmailStats, Enabled: opts.emailStats},
			{Target: purge.EmailStatsTokens, Enabled: opts.emailStatsTokens},
			{Target: purge.PageHits, Enabled: opts.pageHits},
		},
	}
	if opts.cmpIDSet {
		id := opts.cmpID
		req.ScopeID = &id
	}
	return req
}

// statementPrinter writes each statement and its arguments to w.
func statementPrinter(w io.Writer) purge.StatementTracer {
	return func(sql string, args []any) {
		fmt.Fprintln(w, sql)
		if len(args) > 0 {
			fmt.Fprintf(w, "  args: %v\n", args)
		}
	}
}

// purgeError turns engine errors into command errors.
func purgeError(err error) error {
	switch {
	case apperror.IsInvalidCombination(err):
		return errTokensCombination
	case apperror.IsInvalidParameter(err), apperror.IsUnknownTarget(err):
		return err
	default:
		return fmt.Errorf("deletion of log rows failed: %w", err)
	}
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := purgeOpts
	if !cmd.Flags().Changed("days-old") {
		opts.daysOld = cfg.Purge.DaysOld
	}
	opts.cmpIDSet = cmd.Flags().Changed("cmp-id")

	req := buildRequest(opts)
	if opts.verbose {
		req.Tracer = statementPrinter(cmd.ErrOrStderr())
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

	report, optimized, err := a.housekeep(ctx, req, opts.dryRun, opts.optimize)
	if report != nil {
		if msg := report.Message(); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
	}
	if err != nil {
		if report != nil {
			return err
		}
		return purgeError(err)
	}
	if optimized {
		fmt.Fprintln(cmd.OutOrStdout(), "All tables have been optimized.")
	}
	return nil
}

// cmdContext returns the command context or a background context.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
