package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

// ProgressBar renders the loading bar for a 0-1 fraction.
func ProgressBar(frac float64, width int) string {
	t := theme.Active
	frac = min(max(frac, 0), 1)
	filled := int(frac * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", frac*100))
}

// UtilizationBar renders a labeled 0-100 utilization bar. An expected
// utilization above zero is shown after the percentage.
func UtilizationBar(label string, pct, expected float64, labelW, barW int) string {
	t := theme.Active
	color := t.Utilization(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barW, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	out := labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space +
		bar.ViewAs(min(max(pct, 0), 100)/100) + space +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
	if expected > 0 {
		out += dimStyle.Render(fmt.Sprintf("  exp %.0f%%", expected))
	}
	return out
}

// HBars renders labeled horizontal bars scaled to the largest value.
func HBars(labels []string, values []int, colors []lipgloss.Color, width int) string {
	t := theme.Active
	if len(labels) == 0 {
		return ""
	}

	labelW, peak := 0, 0
	for i, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
		peak = max(peak, values[i])
	}
	barW := max(width-labelW-8, 4)
	peak = max(peak, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	lines := make([]string, len(labels))
	for i, l := range labels {
		color := t.Blue
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}
		n := values[i] * barW / peak
		lines[i] = labelStyle.Render(fmt.Sprintf("%-*s", labelW, l)) + space +
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n)) + space +
			countStyle.Render(fmt.Sprintf("%d", values[i]))
	}
	return strings.Join(lines, "\n")
}

// Badge renders a short uppercase severity label in its theme color.
func Badge(label string) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Severity(label)).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(label))
}
