package pipeline

import (
	"fmt"

	"github.com/theirongolddev/portsignal/internal/model"
)

// Action ids are stable across runs so a caller can dispatch by id.
const (
	ActionIDAlertCritical   = "alert-critical"
	ActionIDRenewals        = "renewal-reminders"
	ActionIDReviewUnderUsed = "review-underutilized"
	ActionIDExpandAtRisk    = "expand-at-risk"
	ActionIDHighValue       = "monitor-high-value"
	ActionIDDrafts          = "finalize-drafts"
	ActionIDOptimize        = "optimize-allocation"
	ActionIDSummary         = "executive-summary"
)

const optimizeMinActive = 3

// RankActions builds the priority-ordered next-step list. Risk-driven actions
// come first, fill-ins are added only while the list is shorter than the soft
// cap, and the executive summary always closes the list before truncation.
func RankActions(anomalies []model.Anomaly, flags []model.RiskFlag, items []model.WorkItem, p Policy) []model.RecommendedAction {
	var critical, slow, atRisk []string
	for _, a := range anomalies {
		switch {
		case a.Severity == model.AnomalyCritical:
			critical = append(critical, a.WorkItemID)
		case a.Kind == model.BurningSlow:
			slow = append(slow, a.WorkItemID)
		}
		if a.Kind == model.AtRisk {
			atRisk = append(atRisk, a.WorkItemID)
		}
	}

	var timeline []string
	for _, f := range flags {
		if f.Category == model.CategoryTimeline {
			timeline = append(timeline, f.WorkItemID)
		}
	}

	kinds := make(map[string]model.Kind, len(items))
	for _, item := range items {
		kinds[item.ID] = item.Kind
	}

	var actions []model.RecommendedAction

	if len(critical) > 0 {
		actions = append(actions, model.RecommendedAction{
			ID:                  ActionIDAlertCritical,
			Kind:                model.ActionDraftEmail,
			Title:               "Alert Stakeholders on Critical Contracts",
			Description:         fmt.Sprintf("%s require immediate attention due to budget overrun risk", count(len(critical), nounFor(critical, kinds))),
			Impact:              model.ImpactHigh,
			AffectedWorkItemIDs: dedupe(critical),
		})
	}

	if len(timeline) > 0 {
		actions = append(actions, model.RecommendedAction{
			ID:          ActionIDRenewals,
			Kind:        model.ActionSetAlert,
			Title:       "Set Renewal Reminders",
			Description: fmt.Sprintf("%s expiring within %d days", count(len(timeline), nounFor(timeline, kinds)), expiringWindow),
			Impact:      model.ImpactHigh,
		})
	}

	if len(slow) > 0 {
		actions = append(actions, model.RecommendedAction{
			ID:                  ActionIDReviewUnderUsed,
			Kind:                model.ActionReview,
			Title:               "Review Under-Utilized Contracts",
			Description:         fmt.Sprintf("%s significantly below expected utilization", count(len(slow), nounFor(slow, kinds))),
			Impact:              model.ImpactMedium,
			AffectedWorkItemIDs: dedupe(slow),
		})
	}

	if len(atRisk) > 0 {
		actions = append(actions, model.RecommendedAction{
			ID:                  ActionIDExpandAtRisk,
			Kind:                model.ActionAddStakeholder,
			Title:               "Expand Visibility on At-Risk Contracts",
			Description:         fmt.Sprintf("Add finance stakeholders to monitor %d trending over budget", len(atRisk)),
			Impact:              model.ImpactMedium,
			AffectedWorkItemIDs: dedupe(atRisk),
		})
	}

	var active, highValue, drafts []string
	for _, item := range items {
		switch {
		case item.IsActive():
			active = append(active, item.ID)
			if item.TotalValue > p.HighValueThreshold {
				highValue = append(highValue, item.ID)
			}
		case item.Status == model.StatusDraft:
			drafts = append(drafts, item.ID)
		}
	}

	if len(highValue) > 0 && len(actions) < p.SoftCap {
		actions = append(actions, model.RecommendedAction{
			ID:                  ActionIDHighValue,
			Kind:                model.ActionReview,
			Title:               fmt.Sprintf("Monitor %s", count(len(highValue), "High-Value Contract")),
			Description:         fmt.Sprintf("Active %ss valued over $%.0fK require close tracking", nounFor(highValue, kinds), p.HighValueThreshold/1000),
			Impact:              model.ImpactHigh,
			AffectedWorkItemIDs: dedupe(highValue),
		})
	}

	if len(drafts) > 0 && len(actions) < p.SoftCap {
		actions = append(actions, model.RecommendedAction{
			ID:                  ActionIDDrafts,
			Kind:                model.ActionReview,
			Title:               fmt.Sprintf("Finalize %s", count(len(drafts), "Draft")),
			Description:         fmt.Sprintf("Move draft %ss to review phase to begin work", nounFor(drafts, kinds)),
			Impact:              model.ImpactMedium,
			AffectedWorkItemIDs: dedupe(drafts),
		})
	}

	if len(active) >= optimizeMinActive && len(actions) < p.SoftCap {
		actions = append(actions, model.RecommendedAction{
			ID:          ActionIDOptimize,
			Kind:        model.ActionAddStakeholder,
			Title:       "Optimize Resource Allocation",
			Description: fmt.Sprintf("Review contractor assignments across %d active projects", len(active)),
			Impact:      model.ImpactMedium,
		})
	}

	actions = append(actions, model.RecommendedAction{
		ID:          ActionIDSummary,
		Kind:        model.ActionExportBrief,
		Title:       "Generate Executive Summary",
		Description: "Create portfolio health report for leadership review",
		Impact:      model.ImpactLow,
	})

	if len(actions) > p.ActionCap {
		actions = actions[:p.ActionCap]
	}
	for i := range actions {
		actions[i].Priority = i + 1
	}
	return actions
}

// dedupe drops repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// nounFor names the affected items by their shared kind, or "work item" when
// the kinds are mixed or unknown.
func nounFor(ids []string, kinds map[string]model.Kind) string {
	var shared model.Kind
	for i, id := range ids {
		k := kinds[id]
		if i > 0 && k != shared {
			return "work item"
		}
		shared = k
	}
	switch shared {
	case model.KindContract:
		return "contract"
	case model.KindPurchaseOrder:
		return "purchase order"
	case model.KindInvoice:
		return "invoice"
	case model.KindTimecard:
		return "timecard"
	}
	return "work item"
}

func count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
