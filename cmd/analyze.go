package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/store"
)

var flagSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis pass and print the signal bundle",
	RunE:  runAnalyze,
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Burn-rate anomalies, most severe first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b.Anomalies)
		}
		writeAnomalies(os.Stdout, b.Anomalies)
		return nil
	},
}

var risksCmd = &cobra.Command{
	Use:   "risks",
	Short: "Categorized risk flags",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b.RiskFlags)
		}
		writeRisks(os.Stdout, b.RiskFlags)
		return nil
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Portfolio spend projection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b.Forecast)
		}
		writeForecast(os.Stdout, b.Forecast)
		return nil
	},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio health metrics: burn rate, risk buckets, stages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b.Metrics)
		}
		writeMetrics(os.Stdout, b.Metrics)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, analyzeCmd} {
		c.Flags().BoolVar(&flagSave, "save", false, "Record the run in the local history")
	}
	rootCmd.AddCommand(analyzeCmd, anomaliesCmd, risksCmd, forecastCmd, portfolioCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	b, src, err := loadBundle(cmd.Context())
	if err != nil {
		return err
	}

	if flagSave {
		if err := saveRun(b, src); err != nil {
			return err
		}
	}

	if flagJSON {
		return printJSON(b)
	}
	writeBundle(os.Stdout, b)
	return nil
}

func saveRun(b model.Bundle, src string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	run, err := cache.SaveRun(b, src)
	if err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Saved run %s\n", run.ID)
	}
	return nil
}
