package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/portsignal/internal/model"
)

// Burn-rate rule thresholds. Deltas and utilization are percentage points.
const (
	fastDelta       = 20.0
	fastUtilization = 80.0
	atRiskDelta     = 15.0
	slowDelta       = -25.0
	slowMinElapsed  = 30

	fastProjection   = 0.7
	atRiskProjection = 0.85
)

// Reading is the per-item burn measurement shared by the analyzer, the
// classifier and the portfolio metrics.
type Reading struct {
	Item           model.WorkItem
	UtilizationPct float64
	ExpectedPct    float64
	Delta          float64
	TotalDays      int
	ElapsedDays    int
	DaysRemaining  int
	// Trigger is the anomaly kind this item matched, or empty.
	Trigger model.AnomalyKind
}

// Measurable reports whether the item has a budget to measure against.
func (r Reading) Measurable() bool {
	return r.Item.TotalValue > 0
}

// Measure computes the burn reading for one item at now.
func Measure(item model.WorkItem, now time.Time) Reading {
	r := Reading{Item: item, TotalDays: 1}

	if !item.StartDate.IsZero() && !item.EndDate.IsZero() {
		r.TotalDays = max(1, ceilDays(item.StartDate, item.EndDate))
	}
	if !item.StartDate.IsZero() {
		r.ElapsedDays = max(0, ceilDays(item.StartDate, now))
	}
	if !item.EndDate.IsZero() {
		r.DaysRemaining = max(0, ceilDays(now, item.EndDate))
	}

	if item.TotalValue <= 0 {
		return r
	}

	r.UtilizationPct = finite(item.ConsumedValue / item.TotalValue * 100)
	r.ExpectedPct = float64(r.ElapsedDays) / float64(r.TotalDays) * 100
	r.Delta = r.UtilizationPct - r.ExpectedPct

	switch {
	case r.Delta > fastDelta && r.UtilizationPct > fastUtilization:
		r.Trigger = model.BurningFast
	case r.Delta > atRiskDelta:
		r.Trigger = model.AtRisk
	case r.Delta < slowDelta && r.ElapsedDays > slowMinElapsed:
		r.Trigger = model.BurningSlow
	}
	return r
}

// MeasureAll measures every item against the same instant.
func MeasureAll(items []model.WorkItem, now time.Time) []Reading {
	readings := make([]Reading, len(items))
	for i, item := range items {
		readings[i] = Measure(item, now)
	}
	return readings
}

// DetectAnomalies turns triggered readings into anomalies, ordered
// critical, warning, info with input order kept inside each severity.
func DetectAnomalies(readings []Reading, now time.Time) []model.Anomaly {
	anomalies := make([]model.Anomaly, 0)
	for _, r := range readings {
		if a, ok := anomalyFor(r, now); ok {
			anomalies = append(anomalies, a)
		}
	}
	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Severity.Rank() < anomalies[j].Severity.Rank()
	})
	return anomalies
}

func anomalyFor(r Reading, now time.Time) (model.Anomaly, bool) {
	if r.Trigger == "" || !r.Measurable() {
		return model.Anomaly{}, false
	}

	a := model.Anomaly{
		WorkItemID:             r.Item.ID,
		WorkItemNumber:         r.Item.Label(),
		Kind:                   r.Trigger,
		CurrentUtilizationPct:  r.UtilizationPct,
		ExpectedUtilizationPct: r.ExpectedPct,
		DaysRemaining:          r.DaysRemaining,
	}

	switch r.Trigger {
	case model.BurningFast:
		a.Severity = model.AnomalyCritical
		a.Message = fmt.Sprintf("Burning %.0f%% faster than expected", r.Delta)
		a.ProjectedCompletionDate = addDays(now, float64(r.DaysRemaining)*fastProjection)
	case model.AtRisk:
		a.Severity = model.AnomalyWarning
		a.Message = fmt.Sprintf("Trending %.0f%% over expected rate", r.Delta)
		a.ProjectedCompletionDate = addDays(now, float64(r.DaysRemaining)*atRiskProjection)
	case model.BurningSlow:
		a.Severity = model.AnomalyInfo
		a.Message = fmt.Sprintf("%.0f%% under expected utilization", math.Abs(r.Delta))
		a.ProjectedCompletionDate = r.Item.EndDate
	}
	return a, true
}
