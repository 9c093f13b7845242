package pipeline

import "github.com/theirongolddev/portsignal/internal/model"

// Forecast projects portfolio spend from the summed budget and consumption.
func Forecast(items []model.WorkItem, p Policy) model.ForecastSummary {
	var budget, spend float64
	for _, item := range items {
		budget += finite(item.TotalValue)
		spend += finite(item.ConsumedValue)
	}
	budget = finite(budget)
	spend = finite(spend)

	projected := finite(spend + (budget-spend)*p.CompletionFactor)

	trend := model.TrendOnTrack
	switch {
	case projected > budget*p.TrendUpper:
		trend = model.TrendOver
	case projected < budget*p.TrendLower:
		trend = model.TrendUnder
	}

	return model.ForecastSummary{
		TotalBudget:     budget,
		CurrentSpend:    spend,
		ProjectedSpend:  projected,
		Variance:        finite(projected - budget),
		Trend:           trend,
		ConfidenceLevel: p.ConfidenceLevel,
	}
}
