package pipeline

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// ceilDays returns the number of calendar days from a to b, rounded up.
// Negative spans round toward zero.
func ceilDays(a, b time.Time) int {
	return int(math.Ceil(float64(b.Sub(a)) / float64(day)))
}

// fracDays returns the span from a to b in fractional days.
func fracDays(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(day)
}

// addDays shifts t by a fractional number of days.
func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(day)))
}

// finite returns f, or 0 when f is NaN or infinite.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
