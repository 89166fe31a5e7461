// Package context provides run-scoped values extraction.
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunContext identifies a single housekeeping run (one CLI invocation or one
// scheduler tick).
type RunContext struct {
	RunID     string
	Operation string // estimate, execute, optimize, status
	Trigger   string // cli, schedule
	StartedAt time.Time
}

type runContextKey struct{}

// WithRun adds RunContext to context.
func WithRun(ctx context.Context, run *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, run)
}

// GetRun returns RunContext from context.
func GetRun(ctx context.Context) *RunContext {
	if v, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return v
	}
	return nil
}

// GetRunID returns run ID from context or empty string.
func GetRunID(ctx context.Context) string {
	if r := GetRun(ctx); r != nil {
		return r.RunID
	}
	return ""
}

// NewRunContext creates a RunContext with a time-ordered ID.
func NewRunContext(operation, trigger string) *RunContext {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &RunContext{
		RunID:     id.String(),
		Operation: operation,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
}

// EnsureRun returns ctx unchanged if it already carries a run,
// otherwise attaches a fresh one.
func EnsureRun(ctx context.Context, operation, trigger string) context.Context {
	if GetRun(ctx) != nil {
		return ctx
	}
	return WithRun(ctx, NewRunContext(operation, trigger))
}
