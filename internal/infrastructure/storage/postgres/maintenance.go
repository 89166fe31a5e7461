package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"housekeeper/pkg/logger"
)

// TableStat is one row of pg_stat_user_tables.
type TableStat struct {
	Table          string     `db:"table_name"`
	LiveRows       int64      `db:"live_rows"`
	DeadRows       int64      `db:"dead_rows"`
	LastVacuum     *time.Time `db:"last_vacuum"`
	LastAutovacuum *time.Time `db:"last_autovacuum"`
	LastAnalyze    *time.Time `db:"last_analyze"`
}

// Maintenance runs table upkeep outside of transactions.
type Maintenance struct {
	db QuerierProvider
}

// NewMaintenance creates a Maintenance helper.
func NewMaintenance(db QuerierProvider) *Maintenance {
	return &Maintenance{db: db}
}

// vacuumStatement renders VACUUM (ANALYZE) over tables with quoted identifiers.
func vacuumStatement(tables []string) string {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = pgx.Identifier{t}.Sanitize()
	}
	return "VACUUM (ANALYZE) " + strings.Join(quoted, ", ")
}

// Optimize reclaims space and refreshes planner statistics.
// VACUUM cannot run inside a transaction block, so ctx must not carry one.
func (m *Maintenance) Optimize(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}

	sql := vacuumStatement(tables)
	logger.Debug(ctx, "optimizing tables", "tables", tables)

	if _, err := m.db.GetQuerier(ctx).Exec(ctx, sql); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func tableStatsStatement(tables []string) squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"relname AS table_name",
			"n_live_tup AS live_rows",
			"n_dead_tup AS dead_rows",
			"last_vacuum",
			"last_autovacuum",
			"last_analyze",
		).
		From("pg_stat_user_tables").
		Where("relname = ANY(?)", tables).
		OrderBy("relname")
}

// TableStats returns tuple statistics for the given tables. Tables that do
// not exist are simply absent from the result.
func (m *Maintenance) TableStats(ctx context.Context, tables []string) ([]TableStat, error) {
	sql, args, err := tableStatsStatement(tables).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build table stats query: %w", err)
	}

	var stats []TableStat
	if err := pgxscan.Select(ctx, m.db.GetQuerier(ctx), &stats, sql, args...); err != nil {
		return nil, fmt.Errorf("read table stats: %w", err)
	}
	return stats, nil
}
