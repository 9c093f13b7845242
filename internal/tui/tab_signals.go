package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/tui/components"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

// listRow is one selectable line of a list pane.
type listRow struct {
	severity string
	label    string
	detail   string
}

// renderList renders rows with the cursor row highlighted, scrolled so the
// cursor stays visible within height lines.
func renderList(rows []listRow, cursor, width, height int) string {
	t := theme.Active
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("nothing to show")
	}

	height = max(height, 1)
	offset := 0
	if cursor >= height {
		offset = cursor - height + 1
	}
	end := min(offset+height, len(rows))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		r := rows[i]
		bg := t.Surface
		fg := t.TextPrimary
		if i == cursor {
			bg = t.SurfaceHover
			fg = t.AccentBright
		}
		style := lipgloss.NewStyle().Foreground(fg).Background(bg)
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}

		badge := components.Badge(r.severity)
		rest := max(width-lipgloss.Width(badge)-lipgloss.Width(marker)-16, 0)
		line := style.Render(marker) + badge +
			style.Render(" "+fmt.Sprintf("%-14s", truncStr(r.label, 14))+truncStr(r.detail, rest))
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
	}
	return strings.Join(lines, "\n")
}

// splitPanes lays a list and its detail card side by side, or stacked on
// compact terminals.
func (a App) splitPanes(title string, rows []listRow, detailTitle, detail string, cw, h int) string {
	cursor := a.cursor()

	if a.isCompactLayout() {
		listH := max(h/2-2, 3)
		list := components.ContentCard(title, renderList(rows, cursor, components.CardInnerWidth(cw), listH), cw)
		return list + "\n" + components.ContentCard(detailTitle, detail, cw)
	}

	widths := components.LayoutRow(cw, 2)
	listH := max(h-3, 3)
	list := components.ContentCard(title, renderList(rows, cursor, components.CardInnerWidth(widths[0]), listH), widths[0])
	det := components.ContentCard(detailTitle, detail, widths[1])
	return components.CardRow([]string{list, det})
}

// detailLines renders aligned key/value pairs for a detail card.
func detailLines(pairs [][2]string, width int) string {
	t := theme.Active
	key := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	val := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	keyW := 0
	for _, p := range pairs {
		keyW = max(keyW, lipgloss.Width(p[0]))
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == "" {
			lines = append(lines, val.Width(width).Render(p[1]))
			continue
		}
		lines = append(lines, key.Render(fmt.Sprintf("%-*s  ", keyW, p[0]))+val.Render(truncStr(p[1], width-keyW-2)))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderAnomaliesTab(cw, h int) string {
	anomalies := a.bundle.Anomalies
	rows := make([]listRow, len(anomalies))
	for i, an := range anomalies {
		rows[i] = listRow{string(an.Severity), an.WorkItemNumber, an.Message}
	}

	title := fmt.Sprintf("Anomalies (%d)", len(anomalies))
	if len(anomalies) == 0 {
		return a.splitPanes(title, rows, "Detail", "", cw, h)
	}

	an := anomalies[a.cursor()]
	inner := components.CardInnerWidth(components.LayoutRow(cw, 2)[1])
	detail := components.UtilizationBar("utilization", an.CurrentUtilizationPct, an.ExpectedUtilizationPct, 12, max(inner-34, 8)) +
		"\n\n" + detailLines([][2]string{
		{"work item", an.WorkItemNumber},
		{"kind", string(an.Kind)},
		{"expected", cli.FormatPercent(an.ExpectedUtilizationPct)},
		{"deviation", cli.FormatPointDelta(an.CurrentUtilizationPct - an.ExpectedUtilizationPct)},
		{"remaining", cli.FormatDays(an.DaysRemaining)},
		{"completion", cli.FormatDate(an.ProjectedCompletionDate)},
		{"", ""},
		{"", an.Message},
	}, inner)

	return a.splitPanes(title, rows, an.WorkItemNumber, detail, cw, h)
}

func (a App) renderFlagsTab(cw, h int) string {
	flags := a.bundle.RiskFlags
	rows := make([]listRow, len(flags))
	for i, f := range flags {
		label := f.WorkItemNumber
		if label == "" {
			label = string(f.Category)
		}
		rows[i] = listRow{string(f.Severity), label, f.Title}
	}

	title := fmt.Sprintf("Risk Flags (%d)", len(flags))
	if len(flags) == 0 {
		return a.splitPanes(title, rows, "Detail", "", cw, h)
	}

	f := flags[a.cursor()]
	inner := components.CardInnerWidth(components.LayoutRow(cw, 2)[1])
	detail := detailLines([][2]string{
		{"severity", string(f.Severity)},
		{"category", string(f.Category)},
		{"work item", orDash(f.WorkItemNumber)},
		{"", ""},
		{"", f.Description},
		{"", ""},
		{"", "→ " + f.Recommendation},
	}, inner)

	return a.splitPanes(title, rows, f.Title, detail, cw, h)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// severityOfImpact lets actions reuse the severity palette.
func severityOfImpact(i model.Impact) string {
	switch i {
	case model.ImpactHigh:
		return string(model.RiskHigh)
	case model.ImpactMedium:
		return string(model.RiskMedium)
	}
	return string(model.RiskLow)
}
