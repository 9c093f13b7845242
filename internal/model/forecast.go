package model

// Trend classifies projected spend against the total budget.
type Trend string

const (
	TrendUnder   Trend = "under"
	TrendOnTrack Trend = "on-track"
	TrendOver    Trend = "over"
)

// ForecastSummary holds the portfolio-wide spend projection.
type ForecastSummary struct {
	TotalBudget     float64 `json:"total_budget"`
	CurrentSpend    float64 `json:"current_spend"`
	ProjectedSpend  float64 `json:"projected_spend"`
	Variance        float64 `json:"variance"` // projected - budget
	Trend           Trend   `json:"trend"`
	ConfidenceLevel float64 `json:"confidence_level"`
}
