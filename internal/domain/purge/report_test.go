package purge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Message(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{
			name: "dry run of three deletions",
			report: Report{Mode: ModeEstimated, Results: []PurgeResult{
				{Target: "A", Affected: 3},
				{Target: "B", Affected: 14},
				{Target: "C", Affected: 57},
			}},
			want: "3 A, 14 B and 57 C rows would have been deleted. This is a dry run.",
		},
		{
			name: "executed single deletion",
			report: Report{Mode: ModeExecuted, Results: []PurgeResult{
				{Target: PageHits, Affected: 0},
			}},
			want: "0 page_hits rows have been deleted.",
		},
		{
			name: "redaction estimate",
			report: Report{Mode: ModeEstimated, Results: []PurgeResult{
				{Target: EmailStatsTokens, Kind: KindRedact, Affected: 5},
			}},
			want: "5 email_stats_tokens will be set to NULL. This is a dry run.",
		},
		{
			name: "redaction executed",
			report: Report{Mode: ModeExecuted, Results: []PurgeResult{
				{Target: EmailStatsTokens, Kind: KindRedact, Affected: 5},
			}},
			want: "5 email_stats_tokens have been set to NULL.",
		},
		{
			name: "delete clause comes first",
			report: Report{Mode: ModeExecuted, Results: []PurgeResult{
				{Target: "r", Kind: KindRedact, Affected: 1},
				{Target: "a", Affected: 2},
				{Target: "b", Affected: 3},
			}},
			want: "2 a and 3 b rows have been deleted. 1 r have been set to NULL.",
		},
		{
			name:   "no results",
			report: Report{Mode: ModeEstimated},
			want:   "",
		},
		{
			name:   "disabled",
			report: Report{Mode: ModeExecuted, Disabled: true},
			want:   NotEnabledMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Message())
		})
	}
}

func TestReport_Total(t *testing.T) {
	r := Report{Results: []PurgeResult{{Affected: 2}, {Affected: 40}}}
	assert.Equal(t, int64(42), r.Total())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "estimated", ModeEstimated.String())
	assert.Equal(t, "executed", ModeExecuted.String())
}
