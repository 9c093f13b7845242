// Package model defines the domain types for portfolio signal analysis.
package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending-approval"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusUnknown         Status = "unknown"
)

// ParseStatus maps a free-form status label onto a Status, case-insensitively.
// Labels outside the known vocabulary map to StatusUnknown.
func ParseStatus(s string) Status {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "draft":
		return StatusDraft
	case "pending", "pending approval", "pendingapproval", "in review", "review":
		return StatusPendingApproval
	case "active", "in progress":
		return StatusActive
	case "completed", "complete", "invoiced", "paid", "closed":
		return StatusCompleted
	case "cancelled", "canceled":
		return StatusCancelled
	}
	return StatusUnknown
}

// Kind identifies which source record type a work item came from.
type Kind string

const (
	KindContract      Kind = "contract"
	KindPurchaseOrder Kind = "purchase-order"
	KindInvoice       Kind = "invoice"
	KindTimecard      Kind = "timecard"
	KindUnknown       Kind = "unknown"
)

// ParseKind maps a free-form kind label onto a Kind.
func ParseKind(s string) Kind {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "contract", "sow", "statementofwork":
		return KindContract
	case "purchaseorder", "po":
		return KindPurchaseOrder
	case "invoice":
		return KindInvoice
	case "timecard", "timesheet":
		return KindTimecard
	}
	return KindUnknown
}

// WorkItem is the normalized unit of budget tracking. It is built fresh for each
// analysis pass and never mutated afterwards.
type WorkItem struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	Kind          Kind      `json:"kind"`
	TotalValue    float64   `json:"total_value"`
	ConsumedValue float64   `json:"consumed_value"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Status        Status    `json:"status"`
}

// IsActive reports whether the item is in the Active state.
func (w WorkItem) IsActive() bool {
	return w.Status == StatusActive
}

// Label returns the human-readable number, falling back to a kind-prefixed id.
func (w WorkItem) Label() string {
	if w.Number != "" {
		return w.Number
	}
	prefix := "WI"
	switch w.Kind {
	case KindContract:
		prefix = "SOW"
	case KindPurchaseOrder:
		prefix = "PO"
	case KindInvoice:
		prefix = "INV"
	case KindTimecard:
		prefix = "TC"
	}
	return prefix + "-" + w.ID
}
