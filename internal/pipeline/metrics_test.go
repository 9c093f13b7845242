package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/portsignal/internal/model"
)

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(MeasureAll([]model.WorkItem{
		item("a", 1000, 950, 50, 50, model.StatusActive),
		item("b", 1000, 0, 0, 20, model.StatusDraft),
		item("c", 2000, 500, 0, 100, model.StatusPendingApproval),
	}, testNow), testNow)

	assert.Equal(t, 3, m.TotalItems)
	assert.Equal(t, 1, m.ActiveItems)
	assert.Equal(t, 1, m.PendingItems)
	assert.Equal(t, 4000.0, m.TotalValue)
	assert.Equal(t, 1450.0, m.ConsumedValue)
	assert.Equal(t, 2550.0, m.RemainingValue)
	assert.InDelta(t, 36.25, m.BurnRatePct, 1e-9)
	assert.InDelta(t, 450, m.ProjectedOverrun, 1e-6)

	assert.Equal(t, model.RiskBuckets{High: 1, Medium: 1, Low: 1, Score: 6}, m.Risk)
	assert.Equal(t, []model.StageCount{
		{Status: model.StatusDraft, Count: 1},
		{Status: model.StatusPendingApproval, Count: 1},
		{Status: model.StatusActive, Count: 1},
	}, m.Stages)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil, testNow)
	assert.Zero(t, m.TotalItems)
	assert.Zero(t, m.BurnRatePct)
	assert.Zero(t, m.AvgUtilization)
	assert.Empty(t, m.Stages)
}

func TestProjectedOverrun_WithinSlack(t *testing.T) {
	// 52% spent at 50% of the timeline stays inside the 10% slack.
	assert.Zero(t, projectedOverrun(item("a", 1000, 520, 50, 50, model.StatusActive), testNow))
	assert.Zero(t, projectedOverrun(model.WorkItem{TotalValue: 1000, ConsumedValue: 900}, testNow))
}

func TestRiskBucket_Expired(t *testing.T) {
	r := Measure(item("old", 1000, 100, 100, -5, model.StatusActive), testNow)
	assert.Equal(t, model.RiskHigh, riskBucket(r, testNow))
}
