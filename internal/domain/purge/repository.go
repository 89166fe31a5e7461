package purge

import "context"

// Repository runs materialized queries against the store. Implementations
// use the transaction carried by ctx when there is one.
type Repository interface {
	// Count returns the number of rows matching q.
	Count(ctx context.Context, q MaterializedQuery) (int64, error)

	// MinID returns the lowest matching id, or 0 when nothing matches.
	MinID(ctx context.Context, q MaterializedQuery) (int64, error)

	// MaxID returns the highest matching id, or 0 when nothing matches.
	MaxID(ctx context.Context, q MaterializedQuery) (int64, error)

	// DeleteWindow deletes matching rows with ids in w.
	DeleteWindow(ctx context.Context, q MaterializedQuery, w Window) (int64, error)

	// RedactWindow nulls the redact column of matching rows with ids in w.
	RedactWindow(ctx context.Context, q MaterializedQuery, w Window) (int64, error)
}
