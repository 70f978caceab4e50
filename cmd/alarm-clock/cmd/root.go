package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/shell"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the alarm collection is persisted.
	stateFile string

	// rootCmd represents the base command for running the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Run the terminal alarm clock.",
		Long: `Starts the alarm clock: a live clock face plus named, optionally
repeating alarms evaluated once per second at minute resolution.

Alarms are persisted locally (JSON file or sqlite, see settings) and ring
with a synthesized tone until dismissed or snoozed. Snoozing schedules a
one-shot alarm five minutes out. While an alarm rings, Ctrl+C dismisses it;
otherwise it exits the clock.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// SIGINT is handled by the shell so it can double as the
			// dismiss affordance while ringing.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			return shell.Run(ctx, &shell.Options{
				ConfigPath: configPath,
				StateFile:  stateFile,
			})
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist alarms (overrides settings)")
}
