package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/tui/components"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	b := a.bundle
	m := b.Metrics
	f := b.Forecast

	var out strings.Builder

	// Row 1: headline numbers
	skipped := ""
	if b.Skipped > 0 {
		skipped = fmt.Sprintf("%d skipped", b.Skipped)
	}
	cards := []components.Metric{
		{
			Label: "Work Items",
			Value: cli.FormatNumber(int64(m.TotalItems)),
			Note:  joinNotes(fmt.Sprintf("%d active · %d pending", m.ActiveItems, m.PendingItems), skipped),
		},
		{
			Label: "Budget",
			Value: cli.FormatCompactMoney(f.TotalBudget),
			Note:  cli.FormatCompactMoney(m.RemainingValue) + " remaining",
		},
		{
			Label: "Spend",
			Value: cli.FormatCompactMoney(f.CurrentSpend),
			Note:  cli.FormatPercent(m.BurnRatePct) + " burned",
			Color: t.Utilization(m.BurnRatePct),
		},
		{
			Label: "Projected",
			Value: cli.FormatCompactMoney(f.ProjectedSpend),
			Note:  fmt.Sprintf("%s · %.0f%% confidence", f.Trend, f.ConfidenceLevel),
			Color: t.Trend(string(f.Trend)),
		},
	}
	if a.isCompactLayout() {
		out.WriteString(components.MetricCardRow(cards[:2], cw))
		out.WriteString("\n")
		out.WriteString(components.MetricCardRow(cards[2:], cw))
	} else {
		out.WriteString(components.MetricCardRow(cards, cw))
	}
	out.WriteString("\n")

	// Row 2: risk profile + stage distribution
	halves := components.LayoutRow(cw, 2)
	riskCard := components.ContentCard("Risk Profile", a.renderRiskProfile(components.CardInnerWidth(halves[0])), halves[0])
	stageCard := components.ContentCard("Stages", a.renderStages(components.CardInnerWidth(halves[1])), halves[1])
	if a.isCompactLayout() {
		out.WriteString(components.ContentCard("Risk Profile", a.renderRiskProfile(components.CardInnerWidth(cw)), cw))
		out.WriteString("\n")
		out.WriteString(components.ContentCard("Stages", a.renderStages(components.CardInnerWidth(cw)), cw))
	} else {
		out.WriteString(components.CardRow([]string{riskCard, stageCard}))
	}
	out.WriteString("\n")

	// Row 3: most urgent signals
	out.WriteString(components.ContentCard("Top Signals", a.renderTopSignals(components.CardInnerWidth(cw)), cw))
	return out.String()
}

func joinNotes(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}

func (a App) renderRiskProfile(w int) string {
	t := theme.Active
	r := a.bundle.Metrics.Risk
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := components.HBars(
		[]string{"high", "medium", "low"},
		[]int{r.High, r.Medium, r.Low},
		[]lipgloss.Color{t.Red, t.Orange, t.Green},
		w,
	)
	body += "\n" + muted.Render(fmt.Sprintf("weighted score %d", r.Score))
	if overrun := a.bundle.Metrics.ProjectedOverrun; overrun > 0 {
		body += "\n" + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("projected overrun "+cli.FormatCompactMoney(overrun))
	}
	return body
}

func (a App) renderStages(w int) string {
	t := theme.Active
	stages := a.bundle.Metrics.Stages
	if len(stages) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("no work items")
	}
	labels := make([]string, len(stages))
	values := make([]int, len(stages))
	for i, s := range stages {
		labels[i] = string(s.Status)
		values[i] = s.Count
	}
	return components.HBars(labels, values, nil, w)
}

// renderTopSignals lists the most severe anomalies and flags together.
func (a App) renderTopSignals(w int) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	type signal struct {
		rank     int
		severity string
		label    string
		detail   string
	}
	var signals []signal
	for _, an := range a.bundle.Anomalies {
		rank := an.Severity.Rank()
		signals = append(signals, signal{rank, string(an.Severity), an.WorkItemNumber, an.Message})
	}
	for _, f := range a.bundle.RiskFlags {
		rank := f.Severity.Rank()
		if f.Severity == model.RiskHigh {
			rank = model.AnomalyWarning.Rank()
		}
		signals = append(signals, signal{rank, string(f.Severity), f.WorkItemNumber, f.Title})
	}
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].rank < signals[j].rank })

	if len(signals) == 0 {
		return dim.Render("no signals")
	}

	const limit = 6
	var lines []string
	for i, s := range signals {
		if i == limit {
			lines = append(lines, dim.Render(fmt.Sprintf("… %d more", len(signals)-limit)))
			break
		}
		badge := components.Badge(s.severity)
		label := s.label
		if label == "" {
			label = "portfolio"
		}
		rest := w - lipgloss.Width(badge) - 16
		lines = append(lines, badge+text.Render(" "+fmt.Sprintf("%-14s", truncStr(label, 14))+truncStr(s.detail, rest)))
	}
	return strings.Join(lines, "\n")
}
