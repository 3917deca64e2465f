package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityRewards/internal/config"
	"liquidityRewards/internal/liquidity"
	"liquidityRewards/internal/replay"
	"liquidityRewards/internal/rewards"
	"liquidityRewards/internal/storage"
	"liquidityRewards/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	var stateStore replay.StateStore
	if cfg.StateFile != "" {
		stateStore = &replay.FileStateStore{Path: cfg.StateFile}
	} else {
		stateStore = &replay.DBStateStore{Store: store, Name: "replay"}
	}

	clock := rewards.NewManualClock(0)
	book := replay.NewCheckpointBook()

	collab := rewards.Collaborators{
		Issuer:      replay.NewMintLog(logger),
		Checkpoints: book,
	}
	if cfg.EventsOut != "" {
		collab.Events = storage.NewJsonlStorage(cfg.EventsOut)
	}

	engine := rewards.NewEngine(clock, collab, logger)

	// Positions opened by stake-rewards flow back into the engine as
	// regular stake notifications through the ledger.
	ledger := liquidity.NewLedger(clock, engine, logger)
	engine.SetPositionSink(ledger)

	runner := replay.NewRunner(replay.Config{
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		StateStore:   stateStore,
	}, engine, clock, book, store, logger)

	logger.Info("replay start",
		zap.String("in", cfg.Input),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("state_file", cfg.StateFile),
	)

	return runner.Run(ctx, cfg.Input)
}
