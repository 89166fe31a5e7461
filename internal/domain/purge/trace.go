package purge

import "context"

// StatementTracer receives every statement before it is executed.
type StatementTracer func(sql string, args []any)

type tracerKey struct{}

// WithStatementTracer attaches t to ctx. A nil t is ignored.
func WithStatementTracer(ctx context.Context, t StatementTracer) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// TraceStatement forwards sql to the tracer in ctx, if any.
func TraceStatement(ctx context.Context, sql string, args []any) {
	if t, ok := ctx.Value(tracerKey{}).(StatementTracer); ok {
		t(sql, args)
	}
}
