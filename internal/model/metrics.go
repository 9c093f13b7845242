package model

// RiskBuckets counts items by coarse risk level.
type RiskBuckets struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Score  int `json:"score"` // 3*high + 2*medium + 1*low
}

// StageCount is the number of items in one lifecycle status.
type StageCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// PortfolioMetrics holds the aggregate health figures shown on the command center.
type PortfolioMetrics struct {
	TotalItems       int     `json:"total_items"`
	ActiveItems      int     `json:"active_items"`
	PendingItems     int     `json:"pending_items"`
	TotalValue       float64 `json:"total_value"`
	ConsumedValue    float64 `json:"consumed_value"`
	RemainingValue   float64 `json:"remaining_value"`
	BurnRatePct      float64 `json:"burn_rate_pct"`
	AvgUtilization   float64 `json:"avg_utilization_pct"`
	ProjectedOverrun float64 `json:"projected_overrun"`

	Risk   RiskBuckets  `json:"risk"`
	Stages []StageCount `json:"stages"`
}
