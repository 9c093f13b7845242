package model

import "time"

// Bundle is the full output of one analysis pass.
type Bundle struct {
	AnalyzedAt         time.Time           `json:"analyzed_at"`
	Anomalies          []Anomaly           `json:"anomalies"`
	RiskFlags          []RiskFlag          `json:"risk_flags"`
	Forecast           ForecastSummary     `json:"forecast"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	Metrics            PortfolioMetrics    `json:"metrics"`
	Skipped            int                 `json:"skipped"`
}

// Action returns the recommended action with the given id.
func (b Bundle) Action(id string) (RecommendedAction, bool) {
	for _, a := range b.RecommendedActions {
		if a.ID == id {
			return a, true
		}
	}
	return RecommendedAction{}, false
}
