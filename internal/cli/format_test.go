package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{1234567.8, "$1,234,568"},
		{-2500, "-$2,500"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompactMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{950, "$950"},
		{1234, "$1.2K"},
		{1_250_000, "$1.2M"},
		{3_400_000_000, "$3.4B"},
		{-1500, "-$1.5K"},
	}
	for _, tt := range tests {
		if got := FormatCompactMoney(tt.in); got != tt.want {
			t.Errorf("FormatCompactMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDaysAndDate(t *testing.T) {
	if got := FormatDays(0); got != "ended" {
		t.Errorf("FormatDays(0) = %q", got)
	}
	if got := FormatDays(1); got != "1 day" {
		t.Errorf("FormatDays(1) = %q", got)
	}
	if got := FormatDays(14); got != "14 days" {
		t.Errorf("FormatDays(14) = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	if got := FormatDate(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)); got != "2025-06-15" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestFormatPointDelta(t *testing.T) {
	if got := FormatPointDelta(21.04); got != "+21.0 pts" {
		t.Errorf("got %q", got)
	}
	if got := FormatPointDelta(-30); got != "-30.0 pts" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTableAlignsStyledCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Severity", "Util"},
		Rows: [][]string{
			{"SOW-1", RenderSeverity("critical"), "95.0%"},
			{"---"},
			{"SOW-22", RenderSeverity("info"), "5.0%"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != width {
			t.Errorf("line %d width = %d, want %d", i, w, width)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("empty series = %q", got)
	}
	if got := RenderSparkline([]float64{0, 7, 14}); got != "▁▄█" {
		t.Errorf("got %q", got)
	}
}
