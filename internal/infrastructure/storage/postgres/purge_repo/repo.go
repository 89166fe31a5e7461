// Package purge_repo provides the PostgreSQL implementation of purge.Repository.
// Statements run on the transaction carried by the context, or on the pool.
package purge_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"housekeeper/internal/core/apperror"
	"housekeeper/internal/domain/purge"
	"housekeeper/internal/infrastructure/storage/postgres"
)

// Repo runs purge statements.
type Repo struct {
	db postgres.QuerierProvider
}

// NewRepo creates a purge repository on top of a querier provider
// (normally *postgres.TxManager).
func NewRepo(db postgres.QuerierProvider) *Repo {
	return &Repo{db: db}
}

var _ purge.Repository = (*Repo)(nil)

// Count returns the number of rows matching q.
func (r *Repo) Count(ctx context.Context, q purge.MaterializedQuery) (int64, error) {
	return r.scalar(ctx, "count "+string(q.Target().ID), countStatement(q))
}

// MinID returns the lowest matching id or 0.
func (r *Repo) MinID(ctx context.Context, q purge.MaterializedQuery) (int64, error) {
	return r.scalar(ctx, "min id "+string(q.Target().ID), boundStatement(q, "MIN"))
}

// MaxID returns the highest matching id or 0.
func (r *Repo) MaxID(ctx context.Context, q purge.MaterializedQuery) (int64, error) {
	return r.scalar(ctx, "max id "+string(q.Target().ID), boundStatement(q, "MAX"))
}

// DeleteWindow deletes matching rows with ids in w.
func (r *Repo) DeleteWindow(ctx context.Context, q purge.MaterializedQuery, w purge.Window) (int64, error) {
	return r.exec(ctx, "delete "+string(q.Target().ID), deleteStatement(q, w))
}

// RedactWindow nulls the redact column of matching rows with ids in w.
func (r *Repo) RedactWindow(ctx context.Context, q purge.MaterializedQuery, w purge.Window) (int64, error) {
	if q.Target().Kind != purge.KindRedact {
		return 0, apperror.NewInternal(fmt.Errorf("target %s is not a redaction", q.Target().ID))
	}
	return r.exec(ctx, "redact "+string(q.Target().ID), redactStatement(q, w))
}

func (r *Repo) scalar(ctx context.Context, op string, stmt squirrel.Sqlizer) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, apperror.NewInternal(fmt.Errorf("build %s: %w", op, err))
	}

	purge.TraceStatement(ctx, sql, args)

	var n int64
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperror.NewQueryExecution(op, err)
	}
	return n, nil
}

func (r *Repo) exec(ctx context.Context, op string, stmt squirrel.Sqlizer) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, apperror.NewInternal(fmt.Errorf("build %s: %w", op, err))
	}

	purge.TraceStatement(ctx, sql, args)

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, apperror.NewQueryExecution(op, err)
	}
	return tag.RowsAffected(), nil
}
