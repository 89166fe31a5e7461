package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"housekeeper/internal/core/feature"
)

// SettingsFlags reads the housekeeping toggle from the integration
// settings table: <prefix>plugin_integration_settings.is_published for
// the configured integration name. A missing row means disabled.
type SettingsFlags struct {
	db          QuerierProvider
	table       string
	integration string
}

// NewSettingsFlags creates the provider. prefix must already be validated.
func NewSettingsFlags(db QuerierProvider, prefix, integration string) *SettingsFlags {
	return &SettingsFlags{
		db:          db,
		table:       prefix + "plugin_integration_settings",
		integration: integration,
	}
}

var _ feature.Provider = (*SettingsFlags)(nil)

// IsEnabled implements feature.Provider. Only the housekeeping flag is
// backed by the table; every other flag is off.
func (f *SettingsFlags) IsEnabled(ctx context.Context, flag string) (bool, error) {
	if flag != feature.FlagHousekeeping {
		return false, nil
	}

	sql, args, err := f.statement().ToSql()
	if err != nil {
		return false, fmt.Errorf("build settings query: %w", err)
	}

	var published bool
	err = f.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&published)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read integration settings %q: %w", f.integration, err)
	}
	return published, nil
}

func (f *SettingsFlags) statement() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("is_published").
		From(f.table).
		Where(squirrel.Eq{"name": f.integration}).
		Limit(1)
}
