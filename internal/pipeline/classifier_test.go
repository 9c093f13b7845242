package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/portsignal/internal/model"
)

func flagIDs(flags []model.RiskFlag) []string {
	ids := make([]string, len(flags))
	for i, f := range flags {
		ids[i] = f.ID
	}
	return ids
}

func TestClassifyRisks_IndependentChecks(t *testing.T) {
	// Critical burn, over the threshold, and expiring within a week.
	flags := ClassifyRisks(MeasureAll([]model.WorkItem{
		item("a", 100, 95, 3, 7, model.StatusActive),
	}, testNow))

	assert.Equal(t, []string{"risk-a-budget", "risk-a-timeline", "risk-a-threshold"}, flagIDs(flags))
	assert.Equal(t, model.RiskCritical, flags[0].Severity)
	assert.Equal(t, model.RiskHigh, flags[1].Severity)
	assert.Equal(t, "Initiate renewal discussions or close-out procedures", flags[1].Recommendation)
}

func TestClassifyRisks_TimelineRequiresActive(t *testing.T) {
	flags := ClassifyRisks(MeasureAll([]model.WorkItem{
		item("a", 100, 50, 50, 50, model.StatusActive),
		item("b", 100, 95, 60, 10, model.StatusDraft),
		item("c", 100, 95, 60, 10, model.StatusUnknown),
	}, testNow))

	// Nothing fires on inactive items, so the portfolio fallback appears.
	assert.Equal(t, []string{"info-portfolio", "info-top"}, flagIDs(flags))
}

func TestClassifyRisks_ExpiryBoundaries(t *testing.T) {
	cases := []struct {
		endIn int
		want  model.RiskSeverity
		fires bool
	}{
		{0, "", false},
		{1, model.RiskHigh, true},
		{7, model.RiskHigh, true},
		{8, model.RiskMedium, true},
		{14, model.RiskMedium, true},
		{15, "", false},
	}
	for _, tc := range cases {
		r := Measure(item("x", 100, 50, 20, tc.endIn, model.StatusActive), testNow)
		var timeline []model.RiskFlag
		for _, f := range itemFlags(r) {
			if f.Category == model.CategoryTimeline {
				timeline = append(timeline, f)
			}
		}
		if !tc.fires {
			assert.Empty(t, timeline, "endIn=%d", tc.endIn)
			continue
		}
		require.Len(t, timeline, 1, "endIn=%d", tc.endIn)
		assert.Equal(t, tc.want, timeline[0].Severity, "endIn=%d", tc.endIn)
	}
}

func TestClassifyRisks_UnderUtilization(t *testing.T) {
	flags := ClassifyRisks(MeasureAll([]model.WorkItem{
		item("s", 100, 10, 50, 50, model.StatusCompleted),
	}, testNow))

	require.Len(t, flags, 1)
	assert.Equal(t, "risk-s-underutil", flags[0].ID)
	assert.Equal(t, model.CategoryUtilization, flags[0].Category)
	assert.Equal(t, model.RiskMedium, flags[0].Severity)
	assert.Equal(t, "Only 10% utilized with 50% of timeline elapsed", flags[0].Description)
}

func TestClassifyRisks_PortfolioFallback(t *testing.T) {
	flags := ClassifyRisks(MeasureAll([]model.WorkItem{
		item("a", 100000, 50000, 50, 50, model.StatusActive),
		{ID: "b", Number: "SOW-b", TotalValue: 300000, Status: model.StatusDraft},
		{ID: "c", Number: "SOW-c", TotalValue: 300000, Status: model.StatusCompleted},
	}, testNow))

	require.Len(t, flags, 2)
	info := flags[0]
	assert.Equal(t, "info-portfolio", info.ID)
	assert.Equal(t, model.CategoryCompliance, info.Category)
	assert.Equal(t, model.RiskLow, info.Severity)
	assert.Equal(t, "1 Active / 3 Total Work Items", info.Title)
	assert.Equal(t, "Portfolio utilization at 17% average across all work items", info.Description)

	top := flags[1]
	assert.Equal(t, "info-top", top.ID)
	assert.Equal(t, "b", top.WorkItemID, "ties resolve to the first item in input order")
	assert.Equal(t, "Largest: $300K", top.Title)
	assert.Equal(t, "0% utilized - draft status", top.Description)
}

func TestClassifyRisks_ZeroTotalOnlyFallsBack(t *testing.T) {
	flags := ClassifyRisks(MeasureAll([]model.WorkItem{
		item("z", 0, 100, 60, 3, model.StatusActive),
	}, testNow))
	assert.Equal(t, []string{"info-portfolio", "info-top"}, flagIDs(flags))
}

func TestClassifyRisks_Empty(t *testing.T) {
	flags := ClassifyRisks(nil)
	assert.NotNil(t, flags)
	assert.Empty(t, flags)
}
