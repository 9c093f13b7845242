// Package cmd implements the portsignal CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/config"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/resource"
	"github.com/theirongolddev/portsignal/internal/source"
	"github.com/theirongolddev/portsignal/internal/store"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

var (
	flagSnapshots []string
	flagSource    string
	flagNow       string
	flagNoCache   bool
	flagQuiet     bool
	flagJSON      bool
	flagLogLevel  string
)

// appConfig is loaded once per invocation in PersistentPreRunE.
var appConfig = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "portsignal",
	Short:             "Portfolio signal engine",
	Long:              "Detect burn-rate anomalies, risk flags, spend forecasts and recommended actions across a contract portfolio.",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runAnalyze,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&flagSnapshots, "snapshot", "f", nil, "Snapshot file or directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "Record source: file, api or postgres")
	rootCmd.PersistentFlags().StringVar(&flagNow, "now", "", "Analysis time (RFC3339 or YYYY-MM-DD, defaults to now)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func initRuntime(_ *cobra.Command, _ []string) error {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appConfig = cfg

	level := config.LogLevel(cfg)
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if err := configureLogging(level, cfg.Logging.Format); err != nil {
		return err
	}

	theme.SetActive(cfg.Appearance.Theme)
	return nil
}

func configureLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}
	return nil
}

// sourceName resolves the record source from flags, then config.
func sourceName(cfg config.Config) string {
	switch {
	case flagSource != "":
		return flagSource
	case len(flagSnapshots) > 0:
		return "file"
	case cfg.General.Source != "":
		return cfg.General.Source
	}
	return "file"
}

// builtSource is a record source plus whatever it holds open.
type builtSource struct {
	pipeline.Source
	name  string
	files *pipeline.FileSource
	close func()
}

func (b *builtSource) Close() {
	if b.close != nil {
		b.close()
	}
}

// buildSource opens the configured record source.
func buildSource(ctx context.Context, cfg config.Config, progress pipeline.ProgressFunc) (*builtSource, error) {
	name := sourceName(cfg)

	switch name {
	case "file":
		paths := flagSnapshots
		if len(paths) == 0 {
			paths = cfg.General.Snapshots
		}
		if len(paths) == 0 {
			return nil, errors.New("no snapshots configured; pass --snapshot or run `portsignal setup`")
		}

		fs := &pipeline.FileSource{Paths: paths, Progress: progress}
		bs := &builtSource{Source: fs, name: name, files: fs}
		if !flagNoCache && cfg.General.UseCache {
			cache, err := store.Open(pipeline.CachePath())
			if err != nil {
				log.WithError(err).Warn("cache unavailable, doing full parse")
			} else {
				fs.Cache = cache
				bs.close = func() { _ = cache.Close() }
			}
		}
		return bs, nil

	case "api":
		client := resource.NewClient(config.APIBaseURL(cfg), config.APIToken(cfg), resource.Options{
			Resources: cfg.API.Resources,
			Timeout:   time.Duration(cfg.API.TimeoutSecs) * time.Second,
		})
		if client == nil {
			return nil, fmt.Errorf("api source needs a base URL (set [api] base_url or $%s)", config.EnvAPIBaseURL)
		}
		return &builtSource{Source: client, name: name}, nil

	case "postgres":
		url := config.DatabaseURL(cfg)
		if url == "" {
			return nil, fmt.Errorf("postgres source needs a connection string (set [postgres] url or $%s)", config.EnvDatabaseURL)
		}
		pool, err := source.ConnectPostgres(ctx, url)
		if err != nil {
			return nil, err
		}
		return &builtSource{
			Source: source.NewPostgresSource(pool, cfg.Postgres.Query),
			name:   name,
			close:  pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown source %q (want file, api or postgres)", name)
}

// buildEngine turns the policy and field overrides into an engine.
func buildEngine(cfg config.Config) *pipeline.Engine {
	p := cfg.Policy
	policy := pipeline.Policy{
		CompletionFactor:   p.CompletionFactor,
		ConfidenceLevel:    p.ConfidenceLevel,
		HighValueThreshold: p.HighValueThreshold,
		ActionCap:          p.ActionCap,
		SoftCap:            p.SoftCap,
		TrendUpper:         p.TrendUpper,
		TrendLower:         p.TrendLower,
	}
	return pipeline.NewEngine(policy, source.DefaultFieldTable().Merge(cfg.Fields))
}

// parseNow reads --now, falling back to the wall clock.
func parseNow(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// loadBundle is the shared load-and-analyze path used by all commands.
func loadBundle(ctx context.Context) (model.Bundle, string, error) {
	now, err := parseNow(flagNow)
	if err != nil {
		return model.Bundle{}, "", err
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	src, err := buildSource(ctx, appConfig, progressFn)
	if err != nil {
		return model.Bundle{}, "", err
	}
	defer src.Close()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading work items (%s)...\n", src.name)
	}

	records, err := src.Records(ctx)
	if err != nil {
		return model.Bundle{}, src.name, fmt.Errorf("loading records: %w", err)
	}

	if !flagQuiet && src.files != nil && src.files.Last.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s records from %d files    \n",
			cli.FormatNumber(int64(len(records))), src.files.Last.ParsedFiles)
		if n := src.files.Last.FileErrors; n > 0 {
			fmt.Fprintf(os.Stderr, "  %d files could not be parsed\n", n)
		}
	}

	b := buildEngine(appConfig).Analyze(records, now)
	if b.Skipped > 0 {
		log.WithField("skipped", b.Skipped).Warn("malformed records skipped")
	}
	return b, src.name, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
