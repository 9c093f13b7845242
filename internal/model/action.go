package model

// ActionKind is the closed set of follow-up actions the ranker can suggest.
type ActionKind string

const (
	ActionDraftEmail     ActionKind = "draft-email"
	ActionSetAlert       ActionKind = "set-alert"
	ActionAddStakeholder ActionKind = "add-stakeholder"
	ActionExportBrief    ActionKind = "export-brief"
	ActionReview         ActionKind = "review"
	ActionEscalate       ActionKind = "escalate"
)

// Valid reports whether k is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionDraftEmail, ActionSetAlert, ActionAddStakeholder,
		ActionExportBrief, ActionReview, ActionEscalate:
		return true
	}
	return false
}

// Impact is the expected payoff of taking an action.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// RecommendedAction is one entry of the ranked next-step list.
type RecommendedAction struct {
	ID                  string     `json:"id"`
	Priority            int        `json:"priority"`
	Kind                ActionKind `json:"kind"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Impact              Impact     `json:"impact"`
	AffectedWorkItemIDs []string   `json:"affected_work_item_ids,omitempty"`
}
