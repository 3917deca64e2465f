package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "rewards",
		Short:        "Liquidity provider rewards engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a host event stream through the rewards engine",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input events JSONL path")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots")
	replayCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	replayCmd.Flags().Int("batch-size", 1000, "applied events per snapshot flush")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for snapshot writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("events-out", "", "optional domain events JSONL path")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	payableCmd := &cobra.Command{
		Use:   "payable",
		Short: "Print a provider's claimable rewards from a stored snapshot",
		RunE:  runPayable,
	}

	payableCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots")
	payableCmd.Flags().String("provider", "", "provider address")
	payableCmd.Flags().StringSlice("pool", nil, "pool addresses to limit the query to (comma-separated)")
	payableCmd.Flags().Uint64("at", 0, "evaluation time as unix seconds, 0 means now")
	payableCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(payableCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
