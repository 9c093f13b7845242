package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/portsignal/internal/config"
	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

// setupValues holds the answers of the setup wizard.
type setupValues struct {
	Source    string
	Snapshots string // comma-separated paths
	APIURL    string
	Sink      string
	Theme     string
}

func defaultSetupValues() *setupValues {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return &setupValues{
		Source:    cfg.General.Source,
		Snapshots: strings.Join(cfg.General.Snapshots, ", "),
		APIURL:    cfg.API.BaseURL,
		Sink:      cfg.Dispatch.Sink,
		Theme:     cfg.Appearance.Theme,
	}
}

func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to portsignal").
				Description("Burn-rate anomalies, risk flags and recommended\nactions for your contract portfolio."),
			huh.NewSelect[string]().
				Title("Where do work items come from?").
				Options(
					huh.NewOption("Snapshot files (json, jsonl, csv, yaml)", "file"),
					huh.NewOption("Procurement REST API", "api"),
					huh.NewOption("Postgres database", "postgres"),
				).
				Value(&vals.Source),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Snapshot paths").
				Description("Files or directories, comma-separated").
				Placeholder("./snapshots").
				Value(&vals.Snapshots),
		).WithHideFunc(func() bool { return vals.Source != "file" }),
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Token is read from $"+config.EnvAPIToken).
				Placeholder("https://procurement.example.com/api").
				Validate(validateURL).
				Value(&vals.APIURL),
		).WithHideFunc(func() bool { return vals.Source != "api" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dispatch recommended actions to").
				Options(
					huh.NewOption("Log only", dispatch.SinkLog),
					huh.NewOption("RabbitMQ exchange", dispatch.SinkAMQP),
					huh.NewOption("Redis stream", dispatch.SinkRedis),
				).
				Value(&vals.Sink),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter an absolute http(s) URL")
	}
	return nil
}

// applySetup copies wizard answers onto cfg.
func applySetup(cfg *config.Config, vals *setupValues) {
	cfg.General.Source = vals.Source
	cfg.General.Snapshots = nil
	for _, p := range strings.Split(vals.Snapshots, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.General.Snapshots = append(cfg.General.Snapshots, p)
		}
	}
	cfg.API.BaseURL = strings.TrimSpace(vals.APIURL)
	cfg.Dispatch.Sink = vals.Sink
	cfg.Appearance.Theme = vals.Theme
}

func saveSetup(vals *setupValues) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	applySetup(&cfg, vals)
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}

// RunSetup runs the setup wizard standalone and saves the result.
func RunSetup() error {
	vals := defaultSetupValues()
	if err := newSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("setup wizard: %w", err)
	}
	return saveSetup(vals)
}
