package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/portsignal/internal/model"
)

// ErrMalformedRecord is returned when a record has neither a resolvable total
// value nor any resolvable date.
var ErrMalformedRecord = errors.New("malformed record")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Normalize maps one heterogeneous record onto a WorkItem using table.
// Missing ids are left empty; NormalizeAll assigns positional ids.
func Normalize(rec Record, table FieldTable) (model.WorkItem, error) {
	total, totalOK := resolveAmount(rec, table[FieldTotal])
	start, startOK := resolveDate(rec, table[FieldStart])
	end, endOK := resolveDate(rec, table[FieldEnd])

	id, _ := resolveString(rec, table[FieldID])
	if !totalOK && !startOK && !endOK {
		if id != "" {
			return model.WorkItem{}, fmt.Errorf("%w: %s: no total value or dates", ErrMalformedRecord, id)
		}
		return model.WorkItem{}, fmt.Errorf("%w: no total value or dates", ErrMalformedRecord)
	}

	consumed, _ := resolveAmount(rec, table[FieldConsumed])
	number, numberKey := resolveString(rec, table[FieldNumber])
	status, _ := resolveString(rec, table[FieldStatus])

	kind := model.KindUnknown
	if k, _ := resolveString(rec, table[FieldKind]); k != "" {
		kind = model.ParseKind(k)
	}
	if kind == model.KindUnknown {
		kind = kindFromKey(numberKey)
	}

	item := model.WorkItem{
		ID:            id,
		Number:        number,
		Kind:          kind,
		TotalValue:    total,
		ConsumedValue: consumed,
		StartDate:     start,
		EndDate:       end,
		Status:        model.ParseStatus(status),
	}
	return item, nil
}

// NormalizeAll normalizes every record, skipping malformed ones. It returns
// the surviving items in input order and the number of records skipped.
//
// Source ids shared by items of different kinds (a contract and a purchase
// order both numbered 7) are qualified with the kind, as in "purchase-order:7".
func NormalizeAll(records []Record, table FieldTable) ([]model.WorkItem, int) {
	items := make([]model.WorkItem, 0, len(records))
	skipped := 0
	for i, rec := range records {
		item, err := Normalize(rec, table)
		if err != nil {
			skipped++
			continue
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("row-%d", i+1)
		}
		if item.Number == "" {
			item.Number = item.Label()
		}
		items = append(items, item)
	}
	qualifySharedIDs(items)
	return items, skipped
}

// qualifySharedIDs prefixes ids that appear under more than one kind.
func qualifySharedIDs(items []model.WorkItem) {
	kinds := make(map[string]map[model.Kind]struct{}, len(items))
	for _, item := range items {
		if kinds[item.ID] == nil {
			kinds[item.ID] = make(map[model.Kind]struct{}, 1)
		}
		kinds[item.ID][item.Kind] = struct{}{}
	}
	for i := range items {
		if len(kinds[items[i].ID]) > 1 {
			items[i].ID = string(items[i].Kind) + ":" + items[i].ID
		}
	}
}

func kindFromKey(key string) model.Kind {
	k := strings.ToLower(key)
	switch {
	case strings.HasPrefix(k, "sow"):
		return model.KindContract
	case strings.HasPrefix(k, "po"):
		return model.KindPurchaseOrder
	case strings.HasPrefix(k, "invoice"):
		return model.KindInvoice
	case strings.HasPrefix(k, "timecard"):
		return model.KindTimecard
	}
	return model.KindUnknown
}

// resolveString returns the first non-empty candidate value and the key it
// came from.
func resolveString(rec Record, keys []string) (string, string) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = strings.TrimSpace(x)
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case json.Number:
			s = x.String()
		case fmt.Stringer:
			s = x.String()
		default:
			s = fmt.Sprint(x)
		}
		if s != "" {
			return s, k
		}
	}
	return "", ""
}

// resolveAmount returns the first positive numeric candidate. Candidates that
// parse to zero, a negative or a non-finite value still mark the field as
// resolved but do not stop the search.
func resolveAmount(rec Record, keys []string) (float64, bool) {
	resolved := false
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		resolved = true
		if f = clampAmount(f); f != 0 {
			return f, true
		}
	}
	return 0, resolved
}

func clampAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(x))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func resolveDate(rec Record, keys []string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if t, ok := toTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
