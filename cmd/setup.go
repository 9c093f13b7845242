package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/config"
	"github.com/theirongolddev/portsignal/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	if err := tui.RunSetup(); err != nil {
		return err
	}
	if config.Exists() {
		fmt.Println()
		fmt.Printf("  Saved to %s\n", config.ConfigPath())
		fmt.Println("  Run `portsignal setup` anytime to reconfigure.")
		fmt.Println()
	}
	return nil
}
