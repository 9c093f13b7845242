package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/model"
)

func writeAnomalies(w io.Writer, anomalies []model.Anomaly) {
	if len(anomalies) == 0 {
		fmt.Fprintln(w, "  No burn-rate anomalies.")
		return
	}
	rows := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, []string{
			a.WorkItemNumber,
			cli.RenderSeverity(string(a.Severity)),
			string(a.Kind),
			cli.RenderUtilizationBar(a.CurrentUtilizationPct, 12),
			cli.FormatPercent(a.ExpectedUtilizationPct),
			cli.FormatDays(a.DaysRemaining),
			cli.FormatDate(a.ProjectedCompletionDate),
		})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("Anomalies (%d)", len(anomalies)),
		Headers:     []string{"Work Item", "Severity", "Kind", "Utilization", "Expected", "Remaining", "Completion"},
		Rows:        rows,
		LeftAligned: map[int]bool{1: true, 2: true, 3: true},
	}))
	for _, a := range anomalies {
		fmt.Fprintf(w, "  %s  %s\n", cli.Muted(fmt.Sprintf("%-12s", a.WorkItemNumber)), a.Message)
	}
}

func writeRisks(w io.Writer, flags []model.RiskFlag) {
	if len(flags) == 0 {
		fmt.Fprintln(w, "  No risk flags.")
		return
	}
	rows := make([][]string, 0, len(flags))
	for _, f := range flags {
		item := f.WorkItemNumber
		if item == "" {
			item = "portfolio"
		}
		rows = append(rows, []string{
			item,
			cli.RenderSeverity(string(f.Severity)),
			string(f.Category),
			f.Title,
		})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("Risk Flags (%d)", len(flags)),
		Headers:     []string{"Work Item", "Severity", "Category", "Title"},
		Rows:        rows,
		LeftAligned: map[int]bool{1: true, 2: true, 3: true},
	}))
	for _, f := range flags {
		fmt.Fprintf(w, "  %s %s\n", cli.RenderSeverity(string(f.Severity)), f.Description)
		fmt.Fprintf(w, "    %s\n", cli.Muted("→ "+f.Recommendation))
	}
}

func writeForecast(w io.Writer, f model.ForecastSummary) {
	variance := cli.FormatMoney(f.Variance)
	if f.Variance > 0 {
		variance = "+" + variance
	}
	fmt.Fprint(w, cli.RenderSection("Forecast", [][2]string{
		{"Total budget", cli.FormatMoney(f.TotalBudget)},
		{"Current spend", cli.FormatMoney(f.CurrentSpend)},
		{"Projected spend", cli.FormatMoney(f.ProjectedSpend)},
		{"Variance", variance},
		{"Trend", cli.RenderTrend(f.Trend)},
		{"Confidence", fmt.Sprintf("%.0f%%", f.ConfidenceLevel)},
	}))
}

func writeActions(w io.Writer, actions []model.RecommendedAction) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "  No recommended actions.")
		return
	}
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Priority),
			a.ID,
			string(a.Kind),
			string(a.Impact),
			a.Title,
		})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:       "Recommended Actions",
		Headers:     []string{"#", "ID", "Kind", "Impact", "Title"},
		Rows:        rows,
		LeftAligned: map[int]bool{1: true, 2: true, 3: true, 4: true},
	}))
	for _, a := range actions {
		fmt.Fprintf(w, "  %d. %s\n", a.Priority, a.Description)
		if len(a.AffectedWorkItemIDs) > 0 {
			fmt.Fprintf(w, "     %s\n", cli.Muted("affects "+strings.Join(a.AffectedWorkItemIDs, ", ")))
		}
	}
}

func writeMetrics(w io.Writer, m model.PortfolioMetrics) {
	fmt.Fprint(w, cli.RenderSection("Portfolio", [][2]string{
		{"Work items", fmt.Sprintf("%s (%d active, %d pending)", cli.FormatNumber(int64(m.TotalItems)), m.ActiveItems, m.PendingItems)},
		{"Total value", cli.FormatMoney(m.TotalValue)},
		{"Consumed", cli.FormatMoney(m.ConsumedValue)},
		{"Remaining", cli.FormatMoney(m.RemainingValue)},
		{"Burn rate", cli.RenderUtilizationBar(m.BurnRatePct, 20)},
		{"Avg utilization", cli.FormatPercent(m.AvgUtilization)},
		{"Projected overrun", cli.FormatMoney(m.ProjectedOverrun)},
	}))
	fmt.Fprintln(w)

	r := m.Risk
	peak := float64(max(r.High, r.Medium, r.Low))
	fmt.Fprintln(w, "  "+cli.Muted(fmt.Sprintf("Risk buckets (score %d)", r.Score)))
	fmt.Fprintln(w, cli.RenderHorizontalBar(fmt.Sprintf("%-7s %3d", "high", r.High), float64(r.High), peak, 30))
	fmt.Fprintln(w, cli.RenderHorizontalBar(fmt.Sprintf("%-7s %3d", "medium", r.Medium), float64(r.Medium), peak, 30))
	fmt.Fprintln(w, cli.RenderHorizontalBar(fmt.Sprintf("%-7s %3d", "low", r.Low), float64(r.Low), peak, 30))

	if len(m.Stages) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(m.Stages))
		for _, s := range m.Stages {
			rows = append(rows, []string{string(s.Status), cli.FormatNumber(int64(s.Count))})
		}
		fmt.Fprint(w, cli.RenderTable(cli.Table{
			Title:   "Stages",
			Headers: []string{"Status", "Items"},
			Rows:    rows,
		}))
	}
}

func writeBundle(w io.Writer, b model.Bundle) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("PORTFOLIO SIGNALS  "+b.AnalyzedAt.Format("2006-01-02")))
	fmt.Fprintln(w)
	writeForecast(w, b.Forecast)
	fmt.Fprintln(w)
	writeAnomalies(w, b.Anomalies)
	fmt.Fprintln(w)
	writeRisks(w, b.RiskFlags)
	fmt.Fprintln(w)
	writeActions(w, b.RecommendedActions)
	if b.Skipped > 0 {
		fmt.Fprintf(w, "\n  %s\n", cli.Muted(fmt.Sprintf("%d malformed records skipped", b.Skipped)))
	}
}
