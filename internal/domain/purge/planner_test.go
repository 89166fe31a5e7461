package purge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/core/apperror"
)

func TestPlanner_Plan(t *testing.T) {
	p := NewPlanner(MustDefaultRegistry())

	tests := []struct {
		name string
		ops  OperationSet
		want []TargetID
	}{
		{
			name: "nothing requested uses defaults",
			ops:  nil,
			want: []TargetID{CampaignLeadEventLog, LeadEventLog, EmailStatsDevices, EmailStats, PageHits},
		},
		{
			name: "all disabled uses defaults",
			ops:  OperationSet{{Target: PageHits}, {Target: EmailStatsTokens}},
			want: []TargetID{CampaignLeadEventLog, LeadEventLog, EmailStatsDevices, EmailStats, PageHits},
		},
		{
			name: "cascade inserted before source",
			ops:  Enable(PageHits, EmailStats),
			want: []TargetID{PageHits, EmailStatsDevices, EmailStats},
		},
		{
			name: "explicit implied target is not planned twice",
			ops:  Enable(EmailStatsDevices, EmailStats),
			want: []TargetID{EmailStatsDevices, EmailStats},
		},
		{
			name: "implied target requested after source",
			ops:  Enable(EmailStats, EmailStatsDevices),
			want: []TargetID{EmailStatsDevices, EmailStats},
		},
		{
			name: "first occurrence keeps position",
			ops: OperationSet{
				{Target: PageHits, Enabled: false},
				{Target: LeadEventLog, Enabled: true},
				{Target: PageHits, Enabled: true},
				{Target: LeadEventLog, Enabled: true},
			},
			want: []TargetID{LeadEventLog, PageHits},
		},
		{
			name: "redaction alone",
			ops:  Enable(EmailStatsTokens),
			want: []TargetID{EmailStatsTokens},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := p.Plan(tt.ops, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.TargetIDs())
			assert.False(t, plan.ScopeDropped)
		})
	}
}

func TestPlanner_RedactionWithDeletionFails(t *testing.T) {
	p := NewPlanner(MustDefaultRegistry())

	for _, other := range []TargetID{CampaignLeadEventLog, LeadEventLog, EmailStats, EmailStatsDevices, PageHits} {
		_, err := p.Plan(Enable(EmailStatsTokens, other), nil)
		assert.True(t, apperror.IsInvalidCombination(err), other)
	}
}

func TestPlanner_UnknownTarget(t *testing.T) {
	p := NewPlanner(MustDefaultRegistry())

	_, err := p.Plan(OperationSet{{Target: "audit_log", Enabled: false}}, nil)
	assert.True(t, apperror.IsUnknownTarget(err))
}

func TestPlanner_Scope(t *testing.T) {
	p := NewPlanner(MustDefaultRegistry())
	scope := int64(12235)

	plan, err := p.Plan(Enable(CampaignLeadEventLog), &scope)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, CampaignLeadEventLog, plan.Steps[0].Target.ID)
	require.NotNil(t, plan.Steps[0].ScopeID)
	assert.Equal(t, int64(12235), *plan.Steps[0].ScopeID)
	assert.False(t, plan.ScopeDropped)

	plan, err = p.Plan(Enable(LeadEventLog, PageHits), &scope)
	require.NoError(t, err)
	assert.Equal(t, []TargetID{LeadEventLog, PageHits}, plan.TargetIDs())
	for _, step := range plan.Steps {
		assert.Nil(t, step.ScopeID)
	}
	assert.True(t, plan.ScopeDropped)
}

func TestPlanner_ScopeAppliesOnlyToScopableTarget(t *testing.T) {
	p := NewPlanner(MustDefaultRegistry())
	scope := int64(3)

	plan, err := p.Plan(nil, &scope)
	require.NoError(t, err)
	for _, step := range plan.Steps {
		if step.Target.ID == CampaignLeadEventLog {
			assert.NotNil(t, step.ScopeID)
		} else {
			assert.Nil(t, step.ScopeID, step.Target.ID)
		}
	}
}
