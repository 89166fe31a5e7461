package purge_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/domain/purge"
)

func materialize(t *testing.T, id purge.TargetID, scope *int64) purge.MaterializedQuery {
	t.Helper()
	target, err := purge.MustDefaultRegistry().Lookup(id)
	require.NoError(t, err)
	q, err := purge.Materialize(target, purge.Params{DaysOld: 4, ScopeID: scope, TablePrefix: "prefix_table_"})
	require.NoError(t, err)
	return q
}

const leadEventLogPredicate = "(operation_table.date_added < NOW() - make_interval(days => $1))"

func TestCountStatement(t *testing.T) {
	sql, args, err := countStatement(materialize(t, purge.LeadEventLog, nil)).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(1) FROM prefix_table_lead_event_log AS operation_table WHERE "+leadEventLogPredicate, sql)
	assert.Equal(t, []any{4}, args)
}

func TestBoundStatements(t *testing.T) {
	q := materialize(t, purge.LeadEventLog, nil)

	sql, args, err := boundStatement(q, "MIN").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(MIN(operation_table.id), 0) FROM prefix_table_lead_event_log AS operation_table WHERE "+leadEventLogPredicate, sql)
	assert.Equal(t, []any{4}, args)

	sql, _, err = boundStatement(q, "MAX").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(MAX(operation_table.id), 0) FROM prefix_table_lead_event_log AS operation_table WHERE "+leadEventLogPredicate, sql)
}

func TestDeleteStatement(t *testing.T) {
	sql, args, err := deleteStatement(materialize(t, purge.LeadEventLog, nil), purge.Window{Lo: 88, Hi: 300}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"DELETE FROM prefix_table_lead_event_log AS operation_table WHERE "+leadEventLogPredicate+
			" AND $2 <= operation_table.id AND operation_table.id <= $3",
		sql)
	assert.Equal(t, []any{4, int64(88), int64(300)}, args)
}

func TestDeleteStatement_Scoped(t *testing.T) {
	scope := int64(12235)
	sql, args, err := deleteStatement(materialize(t, purge.CampaignLeadEventLog, &scope), purge.Window{Lo: 1, Hi: 5001}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"DELETE FROM prefix_table_campaign_lead_event_log AS operation_table WHERE ("+
			"operation_table.id NOT IN (SELECT MAX(clel.id) FROM prefix_table_campaign_lead_event_log clel GROUP BY clel.lead_id, clel.campaign_id)"+
			" AND operation_table.date_triggered < NOW() - make_interval(days => $1)"+
			" AND operation_table.campaign_id = $2)"+
			" AND $3 <= operation_table.id AND operation_table.id <= $4",
		sql)
	assert.Equal(t, []any{4, int64(12235), int64(1), int64(5001)}, args)
}

func TestRedactStatement(t *testing.T) {
	sql, args, err := redactStatement(materialize(t, purge.EmailStatsTokens, nil), purge.Window{Lo: 7, Hi: 12}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE prefix_table_email_stats AS operation_table SET tokens = NULL WHERE "+
			"(operation_table.date_sent < NOW() - make_interval(days => $1) AND operation_table.tokens IS NOT NULL)"+
			" AND $2 <= operation_table.id AND operation_table.id <= $3",
		sql)
	assert.Equal(t, []any{4, int64(7), int64(12)}, args)
}
