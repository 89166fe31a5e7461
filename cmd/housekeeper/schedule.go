package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"housekeeper/internal/config"
	"housekeeper/internal/domain/purge"
	httpapi "housekeeper/internal/infrastructure/http"
	"housekeeper/internal/scheduler"
	"housekeeper/pkg/logger"
)

var scheduleRunNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run housekeeping on a cron schedule",
	Long: `Run housekeeping on the cron expression in schedule.cron and serve
Prometheus metrics and health probes on schedule.listen.

A tick that fires while the previous run is still going is skipped.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "run once immediately after start")
	rootCmd.AddCommand(scheduleCmd)
}

// scheduledRequest builds the request every scheduled run uses.
func scheduledRequest(cfg *config.Config) purge.Request {
	ids := make([]purge.TargetID, 0, len(cfg.Schedule.Targets))
	for _, t := range cfg.Schedule.Targets {
		ids = append(ids, purge.TargetID(t))
	}
	return purge.Request{
		DaysOld:    cfg.Purge.DaysOld,
		Operations: purge.Enable(ids...),
	}
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(logger.WithLogger(cmdContext(cmd), log))
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	req := scheduledRequest(cfg)
	job := func(ctx context.Context) error {
		report, optimized, err := a.housekeep(ctx, req, cfg.Schedule.DryRun, cfg.Schedule.Optimize)
		if err != nil {
			return err
		}
		logger.Info(ctx, report.Message(), "optimized", optimized)
		return nil
	}

	sched, err := scheduler.New(cfg.Schedule.Cron, job, log)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Database: a.pool,
		Gatherer: a.metrics,
		Logger:   log,
		Version:  Version,
	})
	server := &http.Server{
		Addr:         cfg.Schedule.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("http server starting", "addr", cfg.Schedule.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if err := sched.Start(ctx); err != nil {
		return err
	}
	if next := sched.NextRun(); next != nil {
		log.Infow("next housekeeping run", "at", next.Format(time.RFC3339))
	}
	if scheduleRunNow {
		go sched.RunOnce(ctx)
	}

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		log.Info("shutting down...")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http server forced to shutdown", "error", err)
	}

	log.Info("housekeeper stopped")
	return runErr
}
