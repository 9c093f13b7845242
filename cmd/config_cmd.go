package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Source:    %s\n", cfg.General.Source)
	fmt.Printf("    Snapshots: %s\n", orNone(strings.Join(cfg.General.Snapshots, ", ")))
	fmt.Printf("    Use cache: %v\n", cfg.General.UseCache)
	fmt.Println()

	p := cfg.Policy
	fmt.Println("  [Policy]")
	fmt.Printf("    Completion factor:    %.2f\n", p.CompletionFactor)
	fmt.Printf("    Confidence level:     %.0f%%\n", p.ConfidenceLevel)
	fmt.Printf("    High-value threshold: $%.0f\n", p.HighValueThreshold)
	fmt.Printf("    Action cap / soft:    %d / %d\n", p.ActionCap, p.SoftCap)
	fmt.Printf("    Trend band:           %.2f – %.2f\n", p.TrendLower, p.TrendUpper)
	fmt.Println()

	if len(cfg.Fields) > 0 {
		fmt.Println("  [Fields]")
		for field, keys := range cfg.Fields {
			fmt.Printf("    %-10s %s\n", field+":", strings.Join(keys, ", "))
		}
		fmt.Println()
	}

	fmt.Println("  [API]")
	fmt.Printf("    Base URL:  %s\n", orNone(config.APIBaseURL(cfg)))
	if token := config.APIToken(cfg); token != "" {
		fmt.Printf("    Token:     %s\n", maskSecret(token))
	} else {
		fmt.Println("    Token:     not configured")
	}
	fmt.Printf("    Resources: %s\n", strings.Join(cfg.API.Resources, ", "))
	fmt.Println()

	fmt.Println("  [Postgres]")
	fmt.Printf("    URL: %s\n", maskURL(config.DatabaseURL(cfg)))
	fmt.Println()

	fmt.Println("  [Dispatch]")
	fmt.Printf("    Sink:      %s\n", cfg.Dispatch.Sink)
	fmt.Printf("    AMQP URL:  %s\n", maskURL(config.RabbitMQURL(cfg)))
	fmt.Printf("    Redis URL: %s\n", maskURL(config.RedisURL(cfg)))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSecs)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", config.LogLevel(cfg))
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `portsignal setup` to reconfigure.")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "not configured"
	}
	return s
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}

// maskURL hides the password of a connection URL.
func maskURL(raw string) string {
	if raw == "" {
		return "not configured"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return maskSecret(raw)
	}
	return u.Redacted()
}
