package source

// Record is one heterogeneous input row as decoded from a snapshot, the REST
// resource layer, or a database query. Keys keep their original spelling.
type Record map[string]any

// Field names a canonical WorkItem attribute.
type Field string

const (
	FieldID       Field = "id"
	FieldNumber   Field = "number"
	FieldKind     Field = "kind"
	FieldTotal    Field = "totalValue"
	FieldConsumed Field = "consumedValue"
	FieldStart    Field = "startDate"
	FieldEnd      Field = "endDate"
	FieldStatus   Field = "status"
)

// Fields lists every canonical field in resolution order.
var Fields = []Field{
	FieldID, FieldNumber, FieldKind, FieldTotal,
	FieldConsumed, FieldStart, FieldEnd, FieldStatus,
}

// FieldTable maps each canonical field to the ordered candidate keys that may
// carry it. The first key holding a non-null, non-zero value wins.
type FieldTable map[Field][]string

// DefaultFieldTable covers the camelCase and snake_case spellings used by
// statements of work and purchase orders.
func DefaultFieldTable() FieldTable {
	return FieldTable{
		FieldID:       {"id", "ID", "_id", "uuid"},
		FieldNumber:   {"sowNumber", "sow_number", "poNumber", "po_number", "invoiceNumber", "invoice_number", "timecardNumber", "timecard_number", "number"},
		FieldKind:     {"kind", "type", "recordType", "record_type"},
		FieldTotal:    {"totalValue", "total_value", "totalAmount", "total_amount", "value", "budget"},
		FieldConsumed: {"invoicedAmount", "invoiced_amount", "amountSpent", "amount_spent", "spentAmount", "spent_amount", "consumedValue", "consumed_value", "spent"},
		FieldStart:    {"startDate", "start_date", "periodStart", "period_start"},
		FieldEnd:      {"endDate", "end_date", "periodEnd", "period_end"},
		FieldStatus:   {"status", "state"},
	}
}

// Merge returns a copy of t where every field present in overrides replaces
// the default candidate list.
func (t FieldTable) Merge(overrides map[string][]string) FieldTable {
	out := make(FieldTable, len(t))
	for f, keys := range t {
		out[f] = append([]string(nil), keys...)
	}
	for name, keys := range overrides {
		if len(keys) == 0 {
			continue
		}
		out[Field(name)] = append([]string(nil), keys...)
	}
	return out
}

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// DiscoveredFile is a snapshot file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
	Name   string // base name without extension
}
