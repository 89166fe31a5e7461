package purge

// Built-in target ids.
const (
	CampaignLeadEventLog TargetID = "campaign_lead_event_log"
	LeadEventLog         TargetID = "lead_event_log"
	EmailStatsDevices    TargetID = "email_stats_devices"
	EmailStats           TargetID = "email_stats"
	EmailStatsTokens     TargetID = "email_stats_tokens"
	PageHits             TargetID = "page_hits"
)

// olderThan renders "column is older than the retention horizon".
func olderThan(expr string) string {
	return expr + " < NOW() - make_interval(days => :daysOld)"
}

// DefaultTargets returns the built-in catalogue in declaration order.
func DefaultTargets() []Target {
	return []Target{
		{
			ID:    CampaignLeadEventLog,
			Table: "campaign_lead_event_log",
			Kind:  KindDelete,
			// Keeps the newest event of each (lead, campaign) pair.
			Predicate: Column("id") + " NOT IN (" +
				"SELECT MAX(clel.id) FROM {prefix}campaign_lead_event_log clel " +
				"GROUP BY clel.lead_id, clel.campaign_id" +
				") AND " + olderThan(Column("date_triggered")),
			ScopeColumn: "campaign_id",
		},
		{
			ID:        LeadEventLog,
			Table:     "lead_event_log",
			Kind:      KindDelete,
			Predicate: olderThan(Column("date_added")),
		},
		{
			ID:    EmailStatsDevices,
			Table: "email_stats_devices",
			Kind:  KindDelete,
			Predicate: "(NOT EXISTS (" +
				"SELECT 1 FROM {prefix}email_stats es WHERE es.id = " + Column("stat_id") +
				") OR EXISTS (" +
				"SELECT 1 FROM {prefix}email_stats es WHERE es.id = " + Column("stat_id") +
				" AND " + olderThan("es.date_sent") +
				"))",
		},
		{
			ID:    EmailStats,
			Table: "email_stats",
			Kind:  KindDelete,
			Predicate: "(" + Column("email_id") + " IS NULL OR EXISTS (" +
				"SELECT 1 FROM {prefix}emails e WHERE e.id = " + Column("email_id") +
				" AND (e.is_published = FALSE OR " + olderThan("e.publish_down") + ")" +
				")) AND " + olderThan(Column("date_sent")),
			Implies: []TargetID{EmailStatsDevices},
		},
		{
			ID:           EmailStatsTokens,
			Table:        "email_stats",
			Kind:         KindRedact,
			Predicate:    olderThan(Column("date_sent")),
			RedactColumn: "tokens",
		},
		{
			ID:        PageHits,
			Table:     "page_hits",
			Kind:      KindDelete,
			Predicate: olderThan(Column("date_hit")),
		},
	}
}
