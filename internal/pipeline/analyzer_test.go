package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/portsignal/internal/model"
)

func TestDetectAnomalies_BurningFast(t *testing.T) {
	r := Measure(item("f", 100, 95, 10, 90, model.StatusActive), testNow)
	assert.Equal(t, model.BurningFast, r.Trigger)

	got := DetectAnomalies([]Reading{r}, testNow)
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, model.AnomalyCritical, a.Severity)
	assert.Equal(t, 90, a.DaysRemaining)
	assert.Equal(t, 95.0, a.CurrentUtilizationPct)
	assert.Equal(t, 10.0, a.ExpectedUtilizationPct)
	assert.Equal(t, "Burning 85% faster than expected", a.Message)
	assert.WithinDuration(t, testNow.Add(63*24*time.Hour), a.ProjectedCompletionDate, time.Second)
}

func TestDetectAnomalies_AtRisk(t *testing.T) {
	got := DetectAnomalies([]Reading{Measure(item("r", 100, 40, 10, 90, model.StatusActive), testNow)}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, model.AtRisk, got[0].Kind)
	assert.Equal(t, model.AnomalyWarning, got[0].Severity)
	assert.WithinDuration(t, testNow.Add(76*24*time.Hour+12*time.Hour), got[0].ProjectedCompletionDate, time.Second)
}

func TestDetectAnomalies_BurningSlow(t *testing.T) {
	it := item("s", 100, 10, 50, 50, model.StatusActive)
	got := DetectAnomalies([]Reading{Measure(it, testNow)}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, model.BurningSlow, got[0].Kind)
	assert.Equal(t, model.AnomalyInfo, got[0].Severity)
	assert.Equal(t, "40% under expected utilization", got[0].Message)
	assert.True(t, got[0].ProjectedCompletionDate.Equal(it.EndDate))
}

func TestDetectAnomalies_SlowNeedsElapsedTime(t *testing.T) {
	r := Measure(item("s", 100, 0, 20, 20, model.StatusActive), testNow)
	assert.Less(t, r.Delta, -25.0)
	assert.Empty(t, DetectAnomalies([]Reading{r}, testNow))
}

func TestDetectAnomalies_ZeroTotalSkipped(t *testing.T) {
	r := Measure(item("z", 0, 500, 50, 5, model.StatusActive), testNow)
	assert.Zero(t, r.UtilizationPct)
	assert.Empty(t, r.Trigger)
	assert.Empty(t, DetectAnomalies([]Reading{r}, testNow))
}

func TestDetectAnomalies_SortedBySeverity(t *testing.T) {
	readings := MeasureAll([]model.WorkItem{
		item("slow", 100, 10, 50, 50, model.StatusActive),
		item("risk", 100, 40, 10, 90, model.StatusActive),
		item("fast", 100, 95, 10, 90, model.StatusActive),
		item("risk2", 100, 45, 10, 90, model.StatusActive),
	}, testNow)

	got := DetectAnomalies(readings, testNow)
	require.Len(t, got, 4)
	ids := []string{got[0].WorkItemID, got[1].WorkItemID, got[2].WorkItemID, got[3].WorkItemID}
	assert.Equal(t, []string{"fast", "risk", "risk2", "slow"}, ids)
}

func TestMeasure_InvalidDates(t *testing.T) {
	r := Measure(model.WorkItem{ID: "x", TotalValue: 100, ConsumedValue: 50}, testNow)
	assert.Equal(t, 1, r.TotalDays)
	assert.Zero(t, r.ElapsedDays)
	assert.Zero(t, r.DaysRemaining)

	// End before start clamps the window to one day; elapsed is unbounded above.
	inverted := item("inv", 100, 50, 10, -20, model.StatusActive)
	r = Measure(inverted, testNow)
	assert.Equal(t, 1, r.TotalDays)
	assert.Equal(t, 10, r.ElapsedDays)
	assert.Zero(t, r.DaysRemaining)
	assert.Equal(t, 1000.0, r.ExpectedPct)
}

func TestMeasure_FutureStart(t *testing.T) {
	r := Measure(item("future", 100, 0, -10, 30, model.StatusActive), testNow)
	assert.Zero(t, r.ElapsedDays)
	assert.Equal(t, 20, r.TotalDays)
	assert.Equal(t, 30, r.DaysRemaining)
}

func TestMeasure_PartialDaysRoundUp(t *testing.T) {
	it := model.WorkItem{
		ID:         "p",
		TotalValue: 100,
		StartDate:  testNow.Add(-36 * time.Hour),
		EndDate:    testNow.Add(12 * time.Hour),
	}
	r := Measure(it, testNow)
	assert.Equal(t, 2, r.TotalDays)
	assert.Equal(t, 2, r.ElapsedDays)
	assert.Equal(t, 1, r.DaysRemaining)
}
