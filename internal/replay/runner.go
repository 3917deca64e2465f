package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityRewards/internal/model"
	"liquidityRewards/internal/rewards"
)

// SnapshotStore persists engine snapshots between replay sessions.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	LoadSnapshot(ctx context.Context) (model.Snapshot, error)
}

// Config controls replay behavior.
type Config struct {
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	StateStore   StateStore
}

// Runner replays a host event stream through the rewards engine. Events
// are applied strictly in stream order on a single goroutine, reproducing
// the host's serial, causally-ordered execution.
type Runner struct {
	cfg    Config
	engine *rewards.Engine
	clock  *rewards.ManualClock
	book   *CheckpointBook
	store  SnapshotStore
	logger *zap.Logger
}

func NewRunner(cfg Config, engine *rewards.Engine, clock *rewards.ManualClock, book *CheckpointBook, store SnapshotStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		engine: engine,
		clock:  clock,
		book:   book,
		store:  store,
		logger: logger,
	}
}

// Run replays the JSONL event stream at inputPath. Progress is snapshotted
// every BatchSize applied events; on restart, events at or below the saved
// sequence are skipped against the restored snapshot.
func (r *Runner) Run(ctx context.Context, inputPath string) error {
	if r.engine == nil || r.clock == nil || r.book == nil {
		return fmt.Errorf("runner is not fully wired")
	}
	if r.cfg.BatchSize <= 0 {
		r.cfg.BatchSize = 1000
	}

	startSeq, err := r.restore(ctx)
	if err != nil {
		return err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, skipped int
	lastSeq := startSeq
	sinceFlush := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.StakeEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("decode event at line %d: %w", total, err)
		}
		if record.Seq <= lastSeq {
			skipped++
			continue
		}

		r.clock.Set(record.Timestamp)
		if err := r.apply(record); err != nil {
			return fmt.Errorf("apply event seq %d (%s): %w", record.Seq, record.Kind, err)
		}
		lastSeq = record.Seq
		applied++
		sinceFlush++

		if sinceFlush >= r.cfg.BatchSize {
			if err := r.flush(ctx, lastSeq); err != nil {
				return err
			}
			sinceFlush = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if sinceFlush > 0 || applied == 0 {
		if err := r.flush(ctx, lastSeq); err != nil {
			return err
		}
	}

	r.logger.Info("replay done",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
		zap.Uint64("last_seq", lastSeq),
	)
	return nil
}

func (r *Runner) restore(ctx context.Context) (uint64, error) {
	if r.cfg.StateStore == nil {
		return 0, nil
	}
	seq, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load state: %w", err)
	}
	if !ok || seq == 0 {
		return 0, nil
	}
	if r.store == nil {
		return 0, fmt.Errorf("checkpoint seq %d found but no snapshot store configured", seq)
	}

	snap, err := r.store.LoadSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	r.engine.Restore(snap)
	r.book.Restore(snap.Checkpoints)
	r.logger.Info("snapshot restored", zap.Uint64("last_seq", seq))
	return seq, nil
}

func (r *Runner) flush(ctx context.Context, lastSeq uint64) error {
	if r.store != nil {
		snap := r.engine.Snapshot()
		snap.Checkpoints = r.book.Snapshot()
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			return r.store.SaveSnapshot(ctx, snap)
		})
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	if r.cfg.StateStore != nil {
		if err := r.cfg.StateStore.Save(ctx, lastSeq); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	r.logger.Debug("snapshot flushed", zap.Uint64("last_seq", lastSeq))
	return nil
}

func (r *Runner) apply(record model.StakeEventRecord) error {
	switch record.Kind {
	case model.StakeEventLiquidityAdded:
		provider, pool, reserve, amount, err := stakeFields(record)
		if err != nil {
			return err
		}
		return r.engine.OnLiquidityAdded(provider, pool, reserve, amount)

	case model.StakeEventLiquidityRemoved:
		provider, pool, reserve, amount, err := stakeFields(record)
		if err != nil {
			return err
		}
		return r.engine.OnLiquidityRemoved(provider, pool, reserve, amount)

	case model.StakeEventClaim:
		provider, err := parseAddress(record.Provider)
		if err != nil {
			return err
		}
		_, err = r.engine.ClaimRewards(provider)
		return err

	case model.StakeEventStakeRewards:
		provider, err := parseAddress(record.Provider)
		if err != nil {
			return err
		}
		pool, err := parseAddress(record.Pool)
		if err != nil {
			return err
		}
		amount, err := parseAmount(record.Amount)
		if err != nil {
			return err
		}
		_, _, err = r.engine.StakeRewards(provider, amount, pool)
		return err

	case model.StakeEventUpdate:
		providers := make([]common.Address, 0, len(record.Providers))
		for _, raw := range record.Providers {
			provider, err := parseAddress(raw)
			if err != nil {
				return err
			}
			providers = append(providers, provider)
		}
		return r.engine.UpdateRewards(providers)

	case model.StakeEventCheckpoint:
		provider, err := parseAddress(record.Provider)
		if err != nil {
			return err
		}
		r.book.Set(provider, record.Timestamp)
		// Settle immediately so the multiplier earned before the removal
		// is frozen exactly at the checkpoint instant.
		return r.engine.UpdateRewards([]common.Address{provider})

	case model.StakeEventProgramAdded:
		pool, err := parseAddress(record.Pool)
		if err != nil {
			return err
		}
		if len(record.ReserveTokens) != 2 || len(record.RewardShares) != 2 {
			return fmt.Errorf("program event needs 2 reserve tokens and 2 shares")
		}
		var reserves [2]common.Address
		for i, raw := range record.ReserveTokens {
			if reserves[i], err = parseAddress(raw); err != nil {
				return err
			}
		}
		rate, err := parseAmount(record.RewardRate)
		if err != nil {
			return err
		}
		shares := [2]uint32{record.RewardShares[0], record.RewardShares[1]}
		return r.engine.AddProgram(common.Address{}, pool, reserves, shares, record.EndTime, rate)

	case model.StakeEventProgramRemoved:
		pool, err := parseAddress(record.Pool)
		if err != nil {
			return err
		}
		return r.engine.RemoveProgram(common.Address{}, pool)

	case model.StakeEventProgramExtended:
		pool, err := parseAddress(record.Pool)
		if err != nil {
			return err
		}
		return r.engine.ExtendProgram(common.Address{}, pool, record.EndTime)

	default:
		r.logger.Warn("unknown event kind", zap.String("kind", record.Kind), zap.Uint64("seq", record.Seq))
		return nil
	}
}

func stakeFields(record model.StakeEventRecord) (provider, pool, reserve common.Address, amount *big.Int, err error) {
	if provider, err = parseAddress(record.Provider); err != nil {
		return
	}
	if pool, err = parseAddress(record.Pool); err != nil {
		return
	}
	if reserve, err = parseAddress(record.ReserveToken); err != nil {
		return
	}
	amount, err = parseAmount(record.Amount)
	return
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid address: %q", value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", value)
	}
	return parsed, nil
}
