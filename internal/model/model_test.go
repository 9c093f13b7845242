package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Active":           StatusActive,
		"ACTIVE":           StatusActive,
		" draft ":          StatusDraft,
		"Pending Approval": StatusPendingApproval,
		"pending_approval": StatusPendingApproval,
		"Pending":          StatusPendingApproval,
		"Invoiced":         StatusCompleted,
		"paid":             StatusCompleted,
		"Canceled":         StatusCancelled,
		"Cancelled":        StatusCancelled,
		"":                 StatusUnknown,
		"on hold":          StatusUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseStatus(in), "ParseStatus(%q)", in)
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindContract, ParseKind("SOW"))
	assert.Equal(t, KindContract, ParseKind("statement_of_work"))
	assert.Equal(t, KindPurchaseOrder, ParseKind("Purchase Order"))
	assert.Equal(t, KindTimecard, ParseKind("timesheet"))
	assert.Equal(t, KindUnknown, ParseKind("widget"))
}

func TestWorkItemLabel(t *testing.T) {
	assert.Equal(t, "SOW-2024-01", WorkItem{ID: "1", Number: "SOW-2024-01"}.Label())
	assert.Equal(t, "PO-7", WorkItem{ID: "7", Kind: KindPurchaseOrder}.Label())
	assert.Equal(t, "WI-x", WorkItem{ID: "x"}.Label())
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Less(t, RiskCritical.Rank(), RiskHigh.Rank())
	assert.Less(t, RiskHigh.Rank(), RiskMedium.Rank())
	assert.Less(t, RiskMedium.Rank(), RiskLow.Rank())
	assert.Less(t, AnomalyCritical.Rank(), AnomalyWarning.Rank())
	assert.Less(t, AnomalyWarning.Rank(), AnomalyInfo.Rank())
}

func TestActionKindValid(t *testing.T) {
	assert.True(t, ActionEscalate.Valid())
	assert.False(t, ActionKind("call").Valid())
}

func TestBundleAction(t *testing.T) {
	b := Bundle{RecommendedActions: []RecommendedAction{{ID: "a"}, {ID: "b", Priority: 2}}}
	got, ok := b.Action("b")
	assert.True(t, ok)
	assert.Equal(t, 2, got.Priority)
	_, ok = b.Action("zz")
	assert.False(t, ok)
}
