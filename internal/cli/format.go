// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatMoney formats a dollar amount with comma separators and no cents.
// e.g., 1234567.8 -> "$1,234,568"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	return "$" + FormatNumber(int64(math.Round(v)))
}

// FormatCompactMoney formats a dollar amount with human-readable suffixes.
// e.g., 1234 -> "$1.2K", 1234567 -> "$1.2M"
func FormatCompactMoney(v float64) string {
	if v < 0 {
		return "-" + FormatCompactMoney(-v)
	}

	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already on the 0-100 scale.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatPointDelta formats a percentage-point difference with an explicit sign.
func FormatPointDelta(delta float64) string {
	if delta >= 0 {
		return fmt.Sprintf("+%.1f pts", delta)
	}
	return fmt.Sprintf("%.1f pts", delta)
}

// FormatDays formats a days-remaining count.
func FormatDays(days int) string {
	switch {
	case days <= 0:
		return "ended"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// FormatDate formats a calendar date, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
