package pipeline

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/portsignal/internal/model"
)

const (
	expiringWindow  = 14
	expiringUrgent  = 7
	thresholdUtil   = 90.0
	recOverrun      = "Consider requesting a change order or reallocating resources"
	recUnderUtil    = "Review scope delivery and consider reallocating unused budget"
	recExpiring     = "Initiate renewal discussions or close-out procedures"
	recThreshold    = "Evaluate remaining deliverables and prepare change order if needed"
	recPortfolio    = "Continue monitoring for optimal resource allocation"
	recLargest      = "Key contract - maintain close visibility"
	portfolioNumber = "Portfolio"
)

// ClassifyRisks runs every independent risk check over the readings. When
// nothing fires on a non-empty portfolio two low-severity informational flags
// are emitted instead. Flags are ordered by severity, input order kept within
// each severity.
func ClassifyRisks(readings []Reading) []model.RiskFlag {
	flags := make([]model.RiskFlag, 0)
	for _, r := range readings {
		flags = append(flags, itemFlags(r)...)
	}

	if len(flags) == 0 && len(readings) > 0 {
		flags = portfolioFlags(readings)
	}

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Severity.Rank() < flags[j].Severity.Rank()
	})
	return flags
}

func itemFlags(r Reading) []model.RiskFlag {
	if !r.Measurable() {
		return nil
	}

	item := r.Item
	num := item.Label()
	var flags []model.RiskFlag

	switch r.Trigger {
	case model.BurningFast:
		flags = append(flags, model.RiskFlag{
			ID:             "risk-" + item.ID + "-budget",
			WorkItemID:     item.ID,
			WorkItemNumber: num,
			Category:       model.CategoryBudget,
			Severity:       model.RiskCritical,
			Title:          "Budget Overrun Imminent",
			Description:    fmt.Sprintf("%s is at %.0f%% utilization with %d days remaining", num, r.UtilizationPct, r.DaysRemaining),
			Recommendation: recOverrun,
		})
	case model.BurningSlow:
		flags = append(flags, model.RiskFlag{
			ID:             "risk-" + item.ID + "-underutil",
			WorkItemID:     item.ID,
			WorkItemNumber: num,
			Category:       model.CategoryUtilization,
			Severity:       model.RiskMedium,
			Title:          "Under-Utilization Detected",
			Description:    fmt.Sprintf("Only %.0f%% utilized with %.0f%% of timeline elapsed", r.UtilizationPct, r.ExpectedPct),
			Recommendation: recUnderUtil,
		})
	}

	if item.IsActive() && r.DaysRemaining > 0 && r.DaysRemaining <= expiringWindow {
		sev := model.RiskMedium
		if r.DaysRemaining <= expiringUrgent {
			sev = model.RiskHigh
		}
		flags = append(flags, model.RiskFlag{
			ID:             "risk-" + item.ID + "-timeline",
			WorkItemID:     item.ID,
			WorkItemNumber: num,
			Category:       model.CategoryTimeline,
			Severity:       sev,
			Title:          "Contract Expiring Soon",
			Description:    fmt.Sprintf("%s expires in %d days", num, r.DaysRemaining),
			Recommendation: recExpiring,
		})
	}

	if item.IsActive() && r.UtilizationPct >= thresholdUtil {
		flags = append(flags, model.RiskFlag{
			ID:             "risk-" + item.ID + "-threshold",
			WorkItemID:     item.ID,
			WorkItemNumber: num,
			Category:       model.CategoryBudget,
			Severity:       model.RiskHigh,
			Title:          "Budget Threshold Reached",
			Description:    fmt.Sprintf("%.0f%% of budget consumed", r.UtilizationPct),
			Recommendation: recThreshold,
		})
	}

	return flags
}

func portfolioFlags(readings []Reading) []model.RiskFlag {
	active := 0
	var utilSum float64
	top := 0
	for i, r := range readings {
		if r.Item.IsActive() {
			active++
		}
		utilSum += r.UtilizationPct
		if r.Item.TotalValue > readings[top].Item.TotalValue {
			top = i
		}
	}
	avg := utilSum / float64(len(readings))
	largest := readings[top]

	return []model.RiskFlag{
		{
			ID:             "info-portfolio",
			WorkItemNumber: portfolioNumber,
			Category:       model.CategoryCompliance,
			Severity:       model.RiskLow,
			Title:          fmt.Sprintf("%d Active / %d Total Work Items", active, len(readings)),
			Description:    fmt.Sprintf("Portfolio utilization at %.0f%% average across all work items", avg),
			Recommendation: recPortfolio,
		},
		{
			ID:             "info-top",
			WorkItemID:     largest.Item.ID,
			WorkItemNumber: largest.Item.Label(),
			Category:       model.CategoryBudget,
			Severity:       model.RiskLow,
			Title:          fmt.Sprintf("Largest: $%.0fK", largest.Item.TotalValue/1000),
			Description:    fmt.Sprintf("%.0f%% utilized - %s status", largest.UtilizationPct, largest.Item.Status),
			Recommendation: recLargest,
		},
	}
}
