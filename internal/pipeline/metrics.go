package pipeline

import (
	"time"

	"github.com/theirongolddev/portsignal/internal/model"
)

// Risk bucket thresholds for portfolio metrics.
const (
	bucketHighUtil   = 90.0
	bucketHighDays   = 14
	bucketMediumUtil = 75.0
	bucketMediumDays = 30

	overrunSlack = 1.1
	minProgress  = 0.01
)

var stageOrder = []model.Status{
	model.StatusDraft,
	model.StatusPendingApproval,
	model.StatusActive,
	model.StatusCompleted,
	model.StatusCancelled,
	model.StatusUnknown,
}

// ComputeMetrics aggregates the command-center health figures.
func ComputeMetrics(readings []Reading, now time.Time) model.PortfolioMetrics {
	m := model.PortfolioMetrics{TotalItems: len(readings)}
	stages := make(map[model.Status]int)

	var utilSum float64
	for _, r := range readings {
		item := r.Item
		stages[item.Status]++

		m.TotalValue += item.TotalValue
		m.ConsumedValue += item.ConsumedValue
		m.RemainingValue += max(0, item.TotalValue-item.ConsumedValue)
		utilSum += r.UtilizationPct

		switch item.Status {
		case model.StatusActive:
			m.ActiveItems++
			m.ProjectedOverrun += projectedOverrun(item, now)
		case model.StatusPendingApproval:
			m.PendingItems++
		}

		switch riskBucket(r, now) {
		case model.RiskHigh:
			m.Risk.High++
		case model.RiskMedium:
			m.Risk.Medium++
		default:
			m.Risk.Low++
		}
	}

	if m.TotalValue > 0 {
		m.BurnRatePct = finite(m.ConsumedValue / m.TotalValue * 100)
	}
	if len(readings) > 0 {
		m.AvgUtilization = utilSum / float64(len(readings))
	}
	m.ProjectedOverrun = finite(m.ProjectedOverrun)
	m.Risk.Score = m.Risk.High*3 + m.Risk.Medium*2 + m.Risk.Low

	m.Stages = make([]model.StageCount, 0, len(stageOrder))
	for _, s := range stageOrder {
		if n := stages[s]; n > 0 {
			m.Stages = append(m.Stages, model.StageCount{Status: s, Count: n})
		}
	}
	return m
}

// projectedOverrun extrapolates an item's current burn pace over its
// remaining timeline. Items burning within 10% of time progress contribute 0.
func projectedOverrun(item model.WorkItem, now time.Time) float64 {
	if item.TotalValue <= 0 || item.StartDate.IsZero() || item.EndDate.IsZero() {
		return 0
	}
	totalDays := max(1, fracDays(item.StartDate, item.EndDate))
	elapsed := max(0, fracDays(item.StartDate, now))
	timeProgress := elapsed / totalDays
	budgetProgress := item.ConsumedValue / item.TotalValue

	if budgetProgress <= timeProgress*overrunSlack {
		return 0
	}
	rate := budgetProgress / max(minProgress, timeProgress)
	return max(0, finite(item.TotalValue*(rate-1)*(1-timeProgress)))
}

// riskBucket grades an item by utilization and raw days to end date. Expired
// items count as high risk.
func riskBucket(r Reading, now time.Time) model.RiskSeverity {
	hasEnd := !r.Item.EndDate.IsZero()
	days := 0
	if hasEnd {
		days = ceilDays(now, r.Item.EndDate)
	}
	switch {
	case r.UtilizationPct >= bucketHighUtil || (hasEnd && days < bucketHighDays):
		return model.RiskHigh
	case r.UtilizationPct >= bucketMediumUtil || (hasEnd && days < bucketMediumDays):
		return model.RiskMedium
	}
	return model.RiskLow
}
