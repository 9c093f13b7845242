package source

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/portsignal/internal/model"
)

func TestNormalize_ContractCamelCase(t *testing.T) {
	rec := Record{
		"id":             "sow-1",
		"sowNumber":      "SOW-2025-001",
		"totalValue":     json.Number("100000"),
		"invoicedAmount": 85000.0,
		"startDate":      "2025-01-01",
		"endDate":        "2025-12-31T00:00:00Z",
		"status":         "Pending Approval",
	}

	item, err := Normalize(rec, DefaultFieldTable())
	require.NoError(t, err)
	assert.Equal(t, "sow-1", item.ID)
	assert.Equal(t, "SOW-2025-001", item.Number)
	assert.Equal(t, model.KindContract, item.Kind)
	assert.Equal(t, 100000.0, item.TotalValue)
	assert.Equal(t, 85000.0, item.ConsumedValue)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), item.StartDate)
	assert.Equal(t, model.StatusPendingApproval, item.Status)
}

func TestNormalize_PurchaseOrderSnakeCase(t *testing.T) {
	rec := Record{
		"id":           42.0,
		"po_number":    "PO-77",
		"total_amount": "$12,500.50",
		"amount_spent": "0",
		"spent_amount": "500",
		"start_date":   "03/01/2025",
		"end_date":     "2025-06-30",
		"status":       "ACTIVE",
	}

	item, err := Normalize(rec, DefaultFieldTable())
	require.NoError(t, err)
	assert.Equal(t, "42", item.ID)
	assert.Equal(t, model.KindPurchaseOrder, item.Kind)
	assert.Equal(t, 12500.50, item.TotalValue)
	assert.Equal(t, 500.0, item.ConsumedValue, "zero candidate must not win over a later non-zero one")
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), item.StartDate)
	assert.Equal(t, model.StatusActive, item.Status)
}

func TestNormalize_Malformed(t *testing.T) {
	_, err := Normalize(Record{"id": "x", "status": "Active"}, DefaultFieldTable())
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "x")

	_, err = Normalize(Record{"totalValue": "n/a", "startDate": "soon"}, DefaultFieldTable())
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalize_PartiallyResolvable(t *testing.T) {
	// Dates alone are enough to keep the record.
	item, err := Normalize(Record{"endDate": "2025-06-30"}, DefaultFieldTable())
	require.NoError(t, err)
	assert.Zero(t, item.TotalValue)
	assert.True(t, item.StartDate.IsZero())

	// An explicit zero total resolves the field.
	_, err = Normalize(Record{"totalValue": 0}, DefaultFieldTable())
	require.NoError(t, err)
}

func TestNormalize_ClampsBadAmounts(t *testing.T) {
	item, err := Normalize(Record{
		"totalValue":     -500.0,
		"invoicedAmount": math.Inf(1),
		"startDate":      "2025-01-01",
	}, DefaultFieldTable())
	require.NoError(t, err)
	assert.Zero(t, item.TotalValue)
	assert.Zero(t, item.ConsumedValue)
}

func TestNormalize_UnknownStatus(t *testing.T) {
	item, err := Normalize(Record{"totalValue": 10, "status": "On Hold"}, DefaultFieldTable())
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnknown, item.Status)
	assert.False(t, item.IsActive())
}

func TestNormalize_ExplicitKindWins(t *testing.T) {
	item, err := Normalize(Record{"totalValue": 10, "kind": "timecard", "sowNumber": "SOW-1"}, DefaultFieldTable())
	require.NoError(t, err)
	assert.Equal(t, model.KindTimecard, item.Kind)
}

func TestNormalizeAll(t *testing.T) {
	records := []Record{
		{"id": "a", "totalValue": 100},
		{"status": "Active"},
		{"totalAmount": 50, "startDate": "2025-01-01"},
	}

	items, skipped := NormalizeAll(records, DefaultFieldTable())
	assert.Equal(t, 1, skipped)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "row-3", items[1].ID)
	assert.Equal(t, "WI-row-3", items[1].Number)
}

func TestNormalize_SkipsNegativeCandidate(t *testing.T) {
	item, err := Normalize(Record{
		"totalValue":     -5.0,
		"total_value":    100.0,
		"invoicedAmount": -1.0,
		"amount_spent":   40.0,
	}, DefaultFieldTable())
	require.NoError(t, err)
	assert.Equal(t, 100.0, item.TotalValue)
	assert.Equal(t, 40.0, item.ConsumedValue)
}

func TestNormalizeAll_QualifiesIDsSharedAcrossKinds(t *testing.T) {
	records := []Record{
		{"id": "7", "kind": "contract", "totalValue": 100},
		{"id": "7", "kind": "purchase-order", "totalValue": 200},
		{"id": "8", "kind": "contract", "totalValue": 300},
		{"id": "8", "kind": "contract", "totalValue": 400},
	}

	items, skipped := NormalizeAll(records, DefaultFieldTable())
	assert.Zero(t, skipped)
	require.Len(t, items, 4)
	assert.Equal(t, "contract:7", items[0].ID)
	assert.Equal(t, "purchase-order:7", items[1].ID)
	assert.Equal(t, "8", items[2].ID)
	assert.Equal(t, "8", items[3].ID)
	assert.Equal(t, "SOW-7", items[0].Number)
	assert.Equal(t, "PO-7", items[1].Number)
}

func TestFieldTableMerge(t *testing.T) {
	base := DefaultFieldTable()
	merged := base.Merge(map[string][]string{"totalValue": {"contract_ceiling"}, "status": nil})

	assert.Equal(t, []string{"contract_ceiling"}, merged[FieldTotal])
	assert.Equal(t, base[FieldStatus], merged[FieldStatus])
	assert.NotEqual(t, base[FieldTotal], merged[FieldTotal], "Merge must not mutate the receiver")

	item, err := Normalize(Record{"contract_ceiling": "900"}, merged)
	require.NoError(t, err)
	assert.Equal(t, 900.0, item.TotalValue)
}

func TestColumnValue(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("1234.5"))
	assert.Equal(t, 1234.5, columnValue(n))

	id := [16]byte{0x12, 0x34}
	assert.Equal(t, "12340000-0000-0000-0000-000000000000", columnValue(id))

	d := pgtype.Date{Time: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	assert.Equal(t, d.Time, columnValue(d))
	assert.Nil(t, columnValue(pgtype.Date{}))
	assert.Equal(t, "plain", columnValue("plain"))
}
