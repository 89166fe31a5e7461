package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"housekeeper/internal/core/tx"
	"housekeeper/pkg/logger"
)

var tracer = otel.Tracer("housekeeper/tx")

// Compile-time check that TxManager implements tx.CheckpointManager interface.
var _ tx.CheckpointManager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	// IsolationLevel: pgx.Serializable, pgx.RepeatableRead, pgx.ReadCommitted
	IsolationLevel pgx.TxIsoLevel

	// AccessMode: pgx.ReadWrite, pgx.ReadOnly
	AccessMode pgx.TxAccessMode

	// StatementTimeout protects against runaway queries. Applied with
	// SET LOCAL, so it is re-applied after every checkpoint.
	StatementTimeout time.Duration
}

// DefaultTxOptions returns production-safe defaults.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 5 * time.Minute,
	}
}

// TxManager manages database transactions with support for:
// - Nested transactions (inner calls reuse the outer transaction)
// - Checkpoints (commit and continue in a fresh transaction)
// - Statement timeout protection
// - Distributed tracing integration
type TxManager struct {
	db       txBeginner
	defaults TxOptions
}

// txBeginner is the part of *pgxpool.Pool the manager uses.
type txBeginner interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool, defaults TxOptions) *TxManager {
	return &TxManager{db: pool.Pool, defaults: defaults}
}

// NewTxManagerFromRawPool creates a new transaction manager from raw pgxpool.Pool.
func NewTxManagerFromRawPool(pool *pgxpool.Pool) *TxManager {
	return &TxManager{db: pool, defaults: DefaultTxOptions()}
}

// txKey is the context key for active transaction.
type txKey struct{}

// Tx wraps pgx.Tx with metadata. The embedded pgx.Tx is swapped on every
// checkpoint; holders of *Tx always see the live transaction.
type Tx struct {
	pgx.Tx
	opts        TxOptions
	checkpoints int
}

// Checkpoints returns how many times the transaction was committed and reopened.
func (t *Tx) Checkpoints() int {
	return t.checkpoints
}

// RunInTransaction executes fn within a transaction.
// If a transaction already exists in ctx, it will be reused (nested transaction).
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, m.defaults, fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access_mode", string(opts.AccessMode)),
		))
	defer span.End()

	if existing := m.GetTx(ctx); existing != nil {
		return fn(ctx)
	}

	return m.startNewTransaction(ctx, opts, fn)
}

// begin opens a transaction and applies the per-transaction settings.
func (m *TxManager) begin(ctx context.Context, opts TxOptions) (pgx.Tx, error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if opts.StatementTimeout > 0 {
		_, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	return tx, nil
}

// startNewTransaction begins a new database transaction.
func (m *TxManager) startNewTransaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.begin(ctx, opts)
	if err != nil {
		return err
	}

	wrappedTx := &Tx{Tx: tx, opts: opts}
	txCtx := context.WithValue(ctx, txKey{}, wrappedTx)

	if err := m.executeWithRollbackProtection(txCtx, wrappedTx, fn); err != nil {
		return err
	}

	// fn may have checkpointed; commit whatever transaction is current now.
	if err := wrappedTx.Tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// executeWithRollbackProtection runs fn and rolls back the current
// transaction on error. Work committed by earlier checkpoints stays. If a
// checkpoint committed but could not reopen, there is nothing to roll back.
func (m *TxManager) executeWithRollbackProtection(ctx context.Context, wrappedTx *Tx, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err != nil {
		// ctx may already be cancelled
		rbErr := wrappedTx.Tx.Rollback(context.Background())
		if rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}
	return nil
}

// Checkpoint commits the transaction carried by ctx and begins a new one with
// the same options. Work committed here survives a later rollback.
func (m *TxManager) Checkpoint(ctx context.Context) error {
	current := m.GetTx(ctx)
	if current == nil {
		return fmt.Errorf("checkpoint: no transaction in context")
	}

	ctx, span := tracer.Start(ctx, "transaction.checkpoint",
		trace.WithAttributes(attribute.Int("tx.checkpoints", current.checkpoints+1)))
	defer span.End()

	if err := current.Tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	next, err := m.begin(ctx, current.opts)
	if err != nil {
		return fmt.Errorf("reopen after checkpoint: %w", err)
	}

	current.Tx = next
	current.checkpoints++
	return nil
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if tx, ok := ctx.Value(txKey{}).(*Tx); ok {
		return tx
	}
	return nil
}

// Querier is satisfied by both a transaction and the pool,
// so repos work inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider hands out the querier bound to ctx.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) Querier
}

// GetQuerier returns appropriate querier for context.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if tx := m.GetTx(ctx); tx != nil {
		return tx.Tx
	}
	return m.db
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := m.defaults
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}
