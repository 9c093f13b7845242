package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/portsignal/internal/model"
)

func rank(items []model.WorkItem, p Policy) []model.RecommendedAction {
	readings := MeasureAll(items, testNow)
	anomalies := DetectAnomalies(readings, testNow)
	return RankActions(anomalies, ClassifyRisks(readings), items, p)
}

func actionIDs(actions []model.RecommendedAction) []string {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return ids
}

func TestRankActions_FillInsBelowSoftCap(t *testing.T) {
	acts := rank([]model.WorkItem{
		item("fast", 100, 95, 10, 90, model.StatusActive),
		item("risk", 100, 40, 10, 90, model.StatusActive),
		item("hv", 250000, 125000, 50, 50, model.StatusActive),
		item("d", 1000, 0, 0, 60, model.StatusDraft),
	}, DefaultPolicy())

	assert.Equal(t, []string{ActionIDAlertCritical, ActionIDExpandAtRisk, ActionIDHighValue, ActionIDSummary}, actionIDs(acts))

	hv := acts[2]
	assert.Equal(t, model.ActionReview, hv.Kind)
	assert.Equal(t, model.ImpactHigh, hv.Impact)
	assert.Equal(t, "Monitor 1 High-Value Contract", hv.Title)
	assert.Equal(t, []string{"hv"}, hv.AffectedWorkItemIDs)
	assert.Equal(t, []string{"fast"}, acts[0].AffectedWorkItemIDs)
	assert.Equal(t, "1 contract require immediate attention due to budget overrun risk", acts[0].Description)
}

func TestRankActions_DraftsAndOptimize(t *testing.T) {
	acts := rank([]model.WorkItem{
		item("a", 1000, 500, 50, 50, model.StatusActive),
		item("b", 1000, 500, 50, 50, model.StatusActive),
		item("c", 1000, 500, 50, 50, model.StatusActive),
		item("d1", 1000, 0, 0, 60, model.StatusDraft),
		item("d2", 1000, 0, 0, 60, model.StatusDraft),
	}, DefaultPolicy())

	require.Equal(t, []string{ActionIDDrafts, ActionIDOptimize, ActionIDSummary}, actionIDs(acts))
	assert.Equal(t, "Finalize 2 Drafts", acts[0].Title)
	assert.Equal(t, []string{"d1", "d2"}, acts[0].AffectedWorkItemIDs)
	assert.Equal(t, "Review contractor assignments across 3 active projects", acts[1].Description)
	assert.Equal(t, []int{1, 2, 3}, []int{acts[0].Priority, acts[1].Priority, acts[2].Priority})
}

func TestRankActions_SoftCapZeroDisablesFillIns(t *testing.T) {
	p := DefaultPolicy()
	p.SoftCap = 0
	acts := rank([]model.WorkItem{
		item("d", 1000, 0, 0, 60, model.StatusDraft),
	}, p)
	assert.Equal(t, []string{ActionIDSummary}, actionIDs(acts))
}

func TestRankActions_TruncatesToCap(t *testing.T) {
	p := DefaultPolicy()
	p.ActionCap = 2
	acts := rank([]model.WorkItem{
		item("fast", 100, 95, 10, 90, model.StatusActive),
		item("exp", 100, 50, 50, 5, model.StatusActive),
		item("risk", 100, 40, 10, 90, model.StatusActive),
	}, p)

	assert.Equal(t, []string{ActionIDAlertCritical, ActionIDRenewals}, actionIDs(acts))
}

func TestRankActions_HighValueThresholdIsExclusive(t *testing.T) {
	acts := rank([]model.WorkItem{
		item("edge", 200000, 100000, 50, 50, model.StatusActive),
	}, DefaultPolicy())
	assert.NotContains(t, actionIDs(acts), ActionIDHighValue)
}

func TestRankActions_DedupesAffectedIDs(t *testing.T) {
	anomalies := []model.Anomaly{
		{WorkItemID: "x", Severity: model.AnomalyCritical, Kind: model.BurningFast},
		{WorkItemID: "x", Severity: model.AnomalyCritical, Kind: model.BurningFast},
		{WorkItemID: "y", Severity: model.AnomalyCritical, Kind: model.BurningFast},
	}
	acts := RankActions(anomalies, nil, nil, DefaultPolicy())
	require.NotEmpty(t, acts)
	assert.Equal(t, []string{"x", "y"}, acts[0].AffectedWorkItemIDs)
}

func TestRankActions_NounFollowsItemKind(t *testing.T) {
	po := item("po", 100, 95, 10, 90, model.StatusActive)
	po.Kind = model.KindPurchaseOrder
	acts := rank([]model.WorkItem{po}, DefaultPolicy())
	require.NotEmpty(t, acts)
	assert.Equal(t, "1 purchase order require immediate attention due to budget overrun risk", acts[0].Description)

	mixed := []model.WorkItem{po, item("sow", 100, 95, 10, 90, model.StatusActive)}
	acts = rank(mixed, DefaultPolicy())
	assert.Equal(t, "2 work items require immediate attention due to budget overrun risk", acts[0].Description)

	draft := item("inv", 1000, 0, 0, 60, model.StatusDraft)
	draft.Kind = model.KindInvoice
	acts = rank([]model.WorkItem{draft}, DefaultPolicy())
	require.Equal(t, ActionIDDrafts, acts[0].ID)
	assert.Equal(t, "Move draft invoices to review phase to begin work", acts[0].Description)
}
