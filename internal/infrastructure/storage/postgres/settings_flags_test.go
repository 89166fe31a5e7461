package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/core/feature"
)

type boolRow struct {
	val bool
	err error
}

func (r boolRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*bool)) = r.val
	return nil
}

type stubQuerier struct {
	row      boolRow
	execErr  error
	lastSQL  string
	lastArgs []any
}

func (s *stubQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.lastSQL, s.lastArgs = sql, args
	return pgconn.NewCommandTag("VACUUM"), s.execErr
}

func (s *stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (s *stubQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.lastSQL, s.lastArgs = sql, args
	return s.row
}

func (s *stubQuerier) GetQuerier(context.Context) Querier { return s }

func TestSettingsFlags_Statement(t *testing.T) {
	f := NewSettingsFlags(&stubQuerier{}, "mautic_", "Housekeeping")

	sql, args, err := f.statement().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT is_published FROM mautic_plugin_integration_settings WHERE name = $1 LIMIT 1", sql)
	assert.Equal(t, []any{"Housekeeping"}, args)
}

func TestSettingsFlags_IsEnabled(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		row     boolRow
		flag    string
		want    bool
		wantErr bool
	}{
		{name: "published", row: boolRow{val: true}, flag: feature.FlagHousekeeping, want: true},
		{name: "unpublished", row: boolRow{val: false}, flag: feature.FlagHousekeeping, want: false},
		{name: "no settings row", row: boolRow{err: pgx.ErrNoRows}, flag: feature.FlagHousekeeping, want: false},
		{name: "database error", row: boolRow{err: errors.New("relation does not exist")}, flag: feature.FlagHousekeeping, wantErr: true},
		{name: "other flag", row: boolRow{val: true}, flag: "beta", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSettingsFlags(&stubQuerier{row: tt.row}, "", "Housekeeping")
			got, err := f.IsEnabled(ctx, tt.flag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
