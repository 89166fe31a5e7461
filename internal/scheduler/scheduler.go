// Package scheduler runs housekeeping on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appctx "housekeeper/internal/core/context"
	"housekeeper/pkg/logger"
)

// Job is one scheduled housekeeping run.
type Job func(ctx context.Context) error

// ValidateSpec checks a standard five-field cron expression (descriptors
// such as @daily and @every 1h are accepted too).
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler triggers a Job on a cron spec. At most one run is in flight:
// a tick or RunOnce call that arrives while a run is going is skipped.
// Panics in scheduled runs are recovered.
type Scheduler struct {
	spec string
	job  Job
	log  *logger.Logger
	cron *cron.Cron

	// runMu is held for the duration of a run. Stop keeps it locked.
	runMu sync.Mutex

	mu       sync.Mutex
	started  bool
	last     RunInfo
	stopOnce sync.Once
	stopped  chan struct{}
}

// RunInfo describes the most recent run.
type RunInfo struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// New creates a scheduler. The spec is validated here.
func New(spec string, job Job, log *logger.Logger) (*Scheduler, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("scheduler")

	cl := cronLogger{log: log}
	s := &Scheduler{
		spec: spec,
		job:  job,
		log:  log,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		stopped: make(chan struct{}),
	}
	return s, nil
}

// Start schedules the job and returns immediately. The scheduler stops
// when ctx is cancelled; each run receives a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule housekeeping: %w", err)
	}

	s.cron.Start()
	s.started = true
	s.log.Infow("scheduler started", "schedule", s.spec)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopped:
		}
	}()

	return nil
}

// RunOnce runs the job synchronously with a fresh run context. It reports
// false when the run was skipped because another one is in flight, the
// scheduler is stopped or ctx is done.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-s.stopped:
		return false
	default:
	}
	if !s.runMu.TryLock() {
		select {
		case <-s.stopped:
		default:
			s.log.Warnw("previous housekeeping run still in progress, skipping")
		}
		return false
	}
	defer s.runMu.Unlock()

	run := appctx.NewRunContext("execute", "schedule")
	ctx = appctx.WithRun(ctx, run)
	ctx = logger.WithLogger(ctx, s.log)

	logger.Info(ctx, "scheduled housekeeping started")
	err := s.job(ctx)
	elapsed := time.Since(run.StartedAt)

	s.mu.Lock()
	s.last = RunInfo{RunID: run.RunID, StartedAt: run.StartedAt, Duration: elapsed, Err: err}
	s.mu.Unlock()

	if err != nil {
		logger.Error(ctx, "scheduled housekeeping failed", "error", err, "elapsed", elapsed)
		return true
	}
	logger.Info(ctx, "scheduled housekeeping completed", "elapsed", elapsed)
	return true
}

// Stop stops the scheduler and waits until no run is in flight, whether
// started by cron or by RunOnce. Concurrent callers all wait for the same
// shutdown. No run starts after Stop returns.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		s.runMu.Lock()
		close(s.stopped)
		s.log.Infow("scheduler stopped")
	})
	<-s.stopped
}

// LastRun returns the most recent run and whether one happened.
func (s *Scheduler) LastRun() (RunInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, !s.last.StartedAt.IsZero()
}

// NextRun returns the next scheduled time, or nil when not started.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
