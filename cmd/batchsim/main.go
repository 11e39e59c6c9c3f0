package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/efreitasn/ammbatcher/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "batchsim",
		Short:        "Run constant-product batches offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(logLevelKey, "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one batch from a scenario file and print the settlement report",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	addRunFlags(runCmd.Flags())
	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a single order against a pool",
		Args:  cobra.NoArgs,
		RunE:  runQuote,
	}
	addQuoteFlags(quoteCmd.Flags())
	root.AddCommand(quoteCmd)

	return root
}

// newLogger writes text logs to the command's stderr so they never mix
// with the report on stdout.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, err := cmd.Flags().GetString(logLevelKey)
	if err != nil {
		return nil, err
	}
	level, err := config.ParseLogLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", logLevelKey, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}
