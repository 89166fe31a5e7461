package purge

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"housekeeper/internal/core/apperror"
	appctx "housekeeper/internal/core/context"
	"housekeeper/internal/core/feature"
	"housekeeper/internal/core/tx"
	"housekeeper/pkg/logger"
)

var tracer = otel.Tracer("housekeeper/purge")

// Request describes one estimate or execute call.
type Request struct {
	// DaysOld is the retention horizon in days. Must be >= 0.
	DaysOld int
	// ScopeID narrows the scopable target to one campaign.
	ScopeID *int64
	// Operations selects targets. Empty means registry defaults.
	Operations OperationSet
	// Tracer, if set, receives every statement before it runs.
	Tracer StatementTracer
}

// Service estimates and executes purge plans.
// Runs are sequential; the service itself holds no per-run state.
type Service struct {
	registry *Registry
	planner  *Planner
	repo     Repository
	txm      tx.CheckpointManager
	flags    feature.Provider
	policy   ChunkPolicy
	prefix   string
	observer Observer
}

// Option customizes a Service.
type Option func(*Service)

// WithChunkPolicy overrides the default window and checkpoint sizes.
func WithChunkPolicy(p ChunkPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithTablePrefix sets the prefix prepended to every table name.
func WithTablePrefix(prefix string) Option {
	return func(s *Service) { s.prefix = prefix }
}

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService creates a purge service.
func NewService(
	registry *Registry,
	repo Repository,
	txm tx.CheckpointManager,
	flags feature.Provider,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		registry: registry,
		planner:  NewPlanner(registry),
		repo:     repo,
		txm:      txm,
		flags:    flags,
		policy:   DefaultChunkPolicy(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.policy.Validate(); err != nil {
		return nil, err
	}
	if !ValidPrefix(s.prefix) {
		return nil, apperror.NewInvalidParameter("tablePrefix", s.prefix, "only letters, digits and underscore are allowed")
	}
	return s, nil
}

// Registry returns the catalogue the service plans against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Estimate counts the rows each planned target would affect.
// Runs in a read-only transaction.
func (s *Service) Estimate(ctx context.Context, req Request) (*Report, error) {
	return s.run(ctx, req, ModeEstimated)
}

// Execute purges the planned targets in id windows, checkpointing the
// transaction as configured by the chunk policy.
func (s *Service) Execute(ctx context.Context, req Request) (*Report, error) {
	return s.run(ctx, req, ModeExecuted)
}

func (s *Service) run(ctx context.Context, req Request, mode Mode) (report *Report, err error) {
	ctx = appctx.EnsureRun(ctx, mode.String(), "")
	ctx = WithStatementTracer(ctx, req.Tracer)

	start := time.Now()
	defer func() {
		s.observer.RunDone(mode, time.Since(start), err)
	}()

	queries, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	enabled, err := s.flags.IsEnabled(ctx, feature.FlagHousekeeping)
	if err != nil {
		return nil, fmt.Errorf("check housekeeping flag: %w", err)
	}
	if !enabled {
		logger.Info(ctx, "housekeeping feature disabled, nothing to do")
		return &Report{Mode: mode, Disabled: true}, nil
	}

	report = &Report{Mode: mode}
	body := func(ctx context.Context) error {
		for _, q := range queries {
			n, err := s.runTarget(ctx, q, mode)
			if err != nil {
				return err
			}
			report.Results = append(report.Results, PurgeResult{
				Target:   q.Target().ID,
				Kind:     q.Target().Kind,
				Affected: n,
				Mode:     mode,
			})
			s.observer.TargetDone(q.Target().ID, mode, n)
		}
		return nil
	}

	if mode == ModeEstimated {
		err = s.txm.ReadOnly(ctx, body)
	} else {
		err = s.txm.RunInTransaction(ctx, body)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "housekeeping finished",
		"mode", mode.String(),
		"targets", len(report.Results),
		"rows", report.Total(),
		"elapsed", time.Since(start),
	)
	return report, nil
}

// prepare plans the request and materializes every step. Nothing here
// touches the database.
func (s *Service) prepare(ctx context.Context, req Request) ([]MaterializedQuery, error) {
	if req.DaysOld < 0 {
		return nil, apperror.NewInvalidParameter("daysOld", req.DaysOld, "must not be negative")
	}

	plan, err := s.planner.Plan(req.Operations, req.ScopeID)
	if err != nil {
		return nil, err
	}
	if plan.ScopeDropped {
		logger.Debug(ctx, "scope ignored, no planned target accepts it", "scope_id", *req.ScopeID)
	}
	logger.Debug(ctx, "plan ready", "targets", plan.TargetIDs(), "days_old", req.DaysOld)

	queries := make([]MaterializedQuery, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		q, err := Materialize(step.Target, Params{
			DaysOld:     req.DaysOld,
			ScopeID:     step.ScopeID,
			TablePrefix: s.prefix,
		})
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func (s *Service) runTarget(ctx context.Context, q MaterializedQuery, mode Mode) (int64, error) {
	id := q.Target().ID
	ctx, span := tracer.Start(ctx, "purge.target",
		trace.WithAttributes(
			attribute.String("purge.target", string(id)),
			attribute.String("purge.kind", q.Target().Kind.String()),
			attribute.String("purge.mode", mode.String()),
		))
	defer span.End()

	var (
		n   int64
		err error
	)
	if mode == ModeEstimated {
		n, err = s.repo.Count(ctx, q)
	} else {
		n, err = s.mutate(ctx, q)
	}
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("purge.affected", n))
	logger.Debug(ctx, "target done", "target", id, "mode", mode.String(), "rows", n)
	return n, nil
}

// mutate walks the matching id range window by window.
func (s *Service) mutate(ctx context.Context, q MaterializedQuery) (int64, error) {
	id := q.Target().ID

	minID, err := s.repo.MinID(ctx, q)
	if err != nil {
		return 0, err
	}
	maxID, err := s.repo.MaxID(ctx, q)
	if err != nil {
		return 0, err
	}
	if minID == 0 {
		return 0, nil
	}
	if minID > maxID {
		return 0, apperror.NewInvariantViolation(fmt.Sprintf("%s: lowest matching id exceeds highest", id)).
			WithDetail("min_id", minID).
			WithDetail("max_id", maxID)
	}

	purgeWindow := s.repo.DeleteWindow
	if q.Target().Kind == KindRedact {
		purgeWindow = s.repo.RedactWindow
	}

	var total int64
	for w := range s.policy.Windows(minID, maxID) {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := purgeWindow(ctx, q, w)
		if err != nil {
			return total, err
		}
		total += n
		s.observer.WindowDone(id, n)

		if w.Checkpoint {
			if err := s.txm.Checkpoint(ctx); err != nil {
				return total, apperror.NewQueryExecution("checkpoint "+string(id), err)
			}
			s.observer.Checkpointed(id)
			logger.Debug(ctx, "checkpoint committed", "target", id, "through_id", w.Hi, "rows", total)
		}
	}
	return total, nil
}
