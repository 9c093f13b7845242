package model

import "time"

// AnomalySeverity grades a burn-rate anomaly.
type AnomalySeverity string

const (
	AnomalyCritical AnomalySeverity = "critical"
	AnomalyWarning  AnomalySeverity = "warning"
	AnomalyInfo     AnomalySeverity = "info"
)

// Rank orders severities from most to least urgent.
func (s AnomalySeverity) Rank() int {
	switch s {
	case AnomalyCritical:
		return 0
	case AnomalyWarning:
		return 1
	case AnomalyInfo:
		return 2
	}
	return 3
}

// AnomalyKind describes the direction of a burn-rate deviation.
type AnomalyKind string

const (
	BurningFast AnomalyKind = "burning-fast"
	BurningSlow AnomalyKind = "burning-slow"
	AtRisk      AnomalyKind = "at-risk"
	Opportunity AnomalyKind = "opportunity"
)

// Anomaly is a detected deviation from expected linear burn for one work item.
type Anomaly struct {
	WorkItemID              string          `json:"work_item_id"`
	WorkItemNumber          string          `json:"work_item_number"`
	Severity                AnomalySeverity `json:"severity"`
	Kind                    AnomalyKind     `json:"kind"`
	Message                 string          `json:"message"`
	CurrentUtilizationPct   float64         `json:"current_utilization_pct"`
	ExpectedUtilizationPct  float64         `json:"expected_utilization_pct"`
	DaysRemaining           int             `json:"days_remaining"`
	ProjectedCompletionDate time.Time       `json:"projected_completion_date"`
}

// RiskCategory is the taxonomy bucket of a risk flag.
type RiskCategory string

const (
	CategoryBudget      RiskCategory = "budget"
	CategoryTimeline    RiskCategory = "timeline"
	CategoryUtilization RiskCategory = "utilization"
	CategoryCompliance  RiskCategory = "compliance"
)

// RiskSeverity grades a risk flag.
type RiskSeverity string

const (
	RiskCritical RiskSeverity = "critical"
	RiskHigh     RiskSeverity = "high"
	RiskMedium   RiskSeverity = "medium"
	RiskLow      RiskSeverity = "low"
)

// Rank orders severities from most to least urgent.
func (s RiskSeverity) Rank() int {
	switch s {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	}
	return 4
}

// RiskFlag is an independently triggered, categorized warning about a work item.
// Portfolio-level informational flags carry an empty WorkItemID unless they point
// at a specific item.
type RiskFlag struct {
	ID             string       `json:"id"`
	WorkItemID     string       `json:"work_item_id"`
	WorkItemNumber string       `json:"work_item_number"`
	Category       RiskCategory `json:"category"`
	Severity       RiskSeverity `json:"severity"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Recommendation string       `json:"recommendation"`
}
