package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/portsignal/internal/config"
	"github.com/theirongolddev/portsignal/internal/dispatch"
)

var flagSink string

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Ranked recommended actions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(b.RecommendedActions)
		}
		writeActions(os.Stdout, b.RecommendedActions)
		return nil
	},
}

var actionsDispatchCmd = &cobra.Command{
	Use:   "dispatch <action-id>",
	Short: "Translate an action into a dispatch descriptor and send it to a sink",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionsDispatch,
}

func init() {
	actionsDispatchCmd.Flags().StringVar(&flagSink, "sink", "", "Dispatch sink: log, amqp or redis (defaults to config)")
	actionsCmd.AddCommand(actionsDispatchCmd)
	rootCmd.AddCommand(actionsCmd)
}

// dispatchOptions resolves sink settings from config and environment.
func dispatchOptions(cfg config.Config) dispatch.Options {
	d := cfg.Dispatch
	opts := dispatch.Options{
		Sink:     d.Sink,
		AMQPURL:  config.RabbitMQURL(cfg),
		Exchange: d.Exchange,
		RedisURL: config.RedisURL(cfg),
		Stream:   d.Stream,
	}
	if flagSink != "" {
		opts.Sink = flagSink
	}
	return opts
}

func runActionsDispatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, _, err := loadBundle(ctx)
	if err != nil {
		return err
	}

	action, ok := b.Action(args[0])
	if !ok {
		return fmt.Errorf("no recommended action %q in the current bundle", args[0])
	}

	sink, err := dispatch.Open(ctx, dispatchOptions(appConfig))
	if err != nil {
		return fmt.Errorf("opening dispatch sink: %w", err)
	}
	defer func() { _ = sink.Close() }()

	d := dispatch.Translate(action)
	if err := sink.Dispatch(ctx, d); err != nil {
		return fmt.Errorf("dispatching %s: %w", action.ID, err)
	}

	if flagJSON {
		return printJSON(d)
	}
	fmt.Printf("  Dispatched %s as %s (%s)\n", action.ID, d.Kind, d.Label)
	return nil
}
