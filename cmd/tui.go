package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/config"
	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/tui"
)

var flagTUIAutoRefresh bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagTUIAutoRefresh, "auto-refresh", false, "Re-run the analysis every minute")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The dashboard owns the terminal; keep logs out of it.
	log.SetLevel(log.ErrorLevel)

	now, err := parseNow(flagNow)
	if err != nil {
		return err
	}
	fixedNow := flagNow != ""

	cfg := appConfig
	engine := buildEngine(cfg)

	load := func(ctx context.Context, progress pipeline.ProgressFunc) (model.Bundle, error) {
		src, err := buildSource(ctx, cfg, progress)
		if err != nil {
			return model.Bundle{}, err
		}
		defer src.Close()

		records, err := src.Records(ctx)
		if err != nil {
			return model.Bundle{}, err
		}
		at := now
		if !fixedNow {
			at = time.Now()
		}
		return engine.Analyze(records, at), nil
	}

	var dispatcher dispatch.Dispatcher
	sink, err := dispatch.Open(cmd.Context(), dispatchOptions(cfg))
	if err != nil {
		log.WithError(err).Error("dispatch disabled")
	} else {
		defer func() { _ = sink.Close() }()
		dispatcher = sink
	}

	app := tui.NewApp(tui.Options{
		Load:            load,
		Dispatcher:      dispatcher,
		SourceLabel:     sourceName(cfg),
		RefreshInterval: time.Minute,
		AutoRefresh:     flagTUIAutoRefresh,
		NeedSetup:       !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
