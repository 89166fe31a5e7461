package purge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/core/apperror"
)

func TestDefaultRegistry(t *testing.T) {
	r := MustDefaultRegistry()

	assert.Len(t, r.Targets(), 6)
	assert.Equal(t, []TargetID{CampaignLeadEventLog, LeadEventLog, EmailStats, PageHits}, r.Defaults())

	tokens, err := r.Lookup(EmailStatsTokens)
	require.NoError(t, err)
	assert.Equal(t, KindRedact, tokens.Kind)
	assert.Equal(t, "email_stats", tokens.Table)
	assert.Equal(t, "tokens", tokens.RedactColumn)

	stats, err := r.Lookup(EmailStats)
	require.NoError(t, err)
	assert.Equal(t, []TargetID{EmailStatsDevices}, stats.Implies)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := MustDefaultRegistry().Lookup("audit_log")
	assert.True(t, apperror.IsUnknownTarget(err))
}

func TestRegistry_TargetsReturnsCopy(t *testing.T) {
	r := MustDefaultRegistry()
	targets := r.Targets()
	targets[3].Implies[0] = "tampered"

	stats, err := r.Lookup(EmailStats)
	require.NoError(t, err)
	assert.Equal(t, []TargetID{EmailStatsDevices}, stats.Implies)
}

func TestRegistry_Tables(t *testing.T) {
	tables := MustDefaultRegistry().Tables("mautic_")
	assert.Equal(t, []string{
		"mautic_campaign_lead_event_log",
		"mautic_lead_event_log",
		"mautic_email_stats_devices",
		"mautic_email_stats",
		"mautic_page_hits",
	}, tables)
}

func TestNewRegistry_RejectsBadCatalogues(t *testing.T) {
	del := func(id TargetID, implies ...TargetID) Target {
		return Target{ID: id, Table: string(id), Kind: KindDelete, Predicate: olderThan(Column("created_at")), Implies: implies}
	}
	redact := Target{ID: "r", Table: "r", Kind: KindRedact, Predicate: olderThan(Column("created_at")), RedactColumn: "payload"}

	tests := []struct {
		name    string
		targets []Target
		errMsg  string
	}{
		{
			name:    "duplicate id",
			targets: []Target{del("a"), del("a")},
			errMsg:  `duplicate target "a"`,
		},
		{
			name:    "unknown implied target",
			targets: []Target{del("a", "missing")},
			errMsg:  `implies unknown target "missing"`,
		},
		{
			name:    "delete implies redact",
			targets: []Target{del("a", "r"), redact},
			errMsg:  "cannot imply",
		},
		{
			name:    "cycle",
			targets: []Target{del("a", "b"), del("b", "a")},
			errMsg:  "implication cycle",
		},
		{
			name: "unsupported parameter",
			targets: []Target{{
				ID: "a", Table: "a", Kind: KindDelete,
				Predicate: Column("owner_id") + " = :ownerId",
			}},
			errMsg: "unsupported template parameter :ownerId",
		},
		{
			name:    "redact without column",
			targets: []Target{{ID: "r", Table: "r", Kind: KindRedact, Predicate: "TRUE"}},
			errMsg:  "has no column",
		},
		{
			name: "two scopable targets",
			targets: []Target{
				{ID: "a", Table: "a", Predicate: "TRUE", ScopeColumn: "campaign_id"},
				{ID: "b", Table: "b", Predicate: "TRUE", ScopeColumn: "campaign_id"},
			},
			errMsg: "both scopable",
		},
		{
			name:    "missing predicate",
			targets: []Target{{ID: "a", Table: "a"}},
			errMsg:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.targets...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "delete", KindDelete.String())
	assert.Equal(t, "redact", KindRedact.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}
