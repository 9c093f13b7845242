package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored analysis runs, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if len(args) == 1 {
		b, err := cache.LoadRun(args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return fmt.Errorf("no stored run %q", args[0])
		}
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b)
		}
		writeBundle(os.Stdout, b)
		return nil
	}

	runs, err := cache.ListRuns(flagHistoryLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("\n  No stored runs. Use `portsignal analyze --save` to record one.")
		return nil
	}

	fmt.Print(renderHistory(runs))
	return nil
}

// renderHistory renders runs newest first, with a spend sparkline in
// chronological order.
func renderHistory(runs []store.RunSummary) string {
	rows := make([][]string, 0, len(runs))
	spend := make([]float64, len(runs))
	for i, r := range runs {
		rows = append(rows, []string{
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			r.ID[:min(8, len(r.ID))],
			r.Source,
			cli.FormatNumber(int64(r.ItemCount)),
			fmt.Sprintf("%d/%d", r.CriticalCount, r.AnomalyCount),
			cli.FormatNumber(int64(r.FlagCount)),
			cli.FormatCompactMoney(r.CurrentSpend),
			cli.FormatCompactMoney(r.ProjectedSpend),
			cli.RenderTrend(r.Trend),
		})
		spend[len(runs)-1-i] = r.CurrentSpend
	}

	out := "\n" + cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("Analysis History (%d)", len(runs)),
		Headers:     []string{"Analyzed", "Run", "Source", "Items", "Crit/Anom", "Flags", "Spend", "Projected", "Trend"},
		Rows:        rows,
		LeftAligned: map[int]bool{1: true, 2: true, 8: true},
	})
	if len(runs) > 1 {
		out += fmt.Sprintf("\n  Spend  %s\n", cli.RenderSparkline(spend))
	}
	return out
}
