package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"liquidityRewards/internal/config"
	"liquidityRewards/internal/replay"
	"liquidityRewards/internal/rewards"
	"liquidityRewards/internal/storage/postgres"
)

func runPayable(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPayable(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if !common.IsHexAddress(cfg.Provider) {
		return fmt.Errorf("valid provider address is required")
	}
	provider := common.HexToAddress(cfg.Provider)

	pools := make([]common.Address, 0, len(cfg.Pools))
	for _, raw := range cfg.Pools {
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("invalid pool address: %q", raw)
		}
		pools = append(pools, common.HexToAddress(raw))
	}

	at := cfg.At
	if at == 0 {
		at = uint64(time.Now().Unix())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	book := replay.NewCheckpointBook()
	book.Restore(snap.Checkpoints)

	engine := rewards.NewEngine(rewards.NewManualClock(at), rewards.Collaborators{Checkpoints: book}, logger)
	engine.Restore(snap)

	payable, err := engine.Rewards(provider, pools...)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", payable.String())
	return nil
}
