package liquidity

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityRewards/internal/rewards"
)

// Notifier receives stake-change notifications. The ledger always notifies
// before applying a change, so the receiver settles against pre-mutation
// amounts.
type Notifier interface {
	OnLiquidityAdded(provider, pool, reserve common.Address, amount *big.Int) error
	OnLiquidityRemoved(provider, pool, reserve common.Address, amount *big.Int) error
}

// Position is one liquidity position held by a provider.
type Position struct {
	ID           uint64
	Provider     common.Address
	Pool         common.Address
	ReserveToken common.Address
	Amount       *big.Int
}

type stakeKey struct {
	pool    common.Address
	reserve common.Address
}

type providerStakeKey struct {
	provider common.Address
	pool     common.Address
	reserve  common.Address
}

// Ledger owns canonical staked-amount bookkeeping: positions, per-provider
// and total staked amounts, and the last full-removal checkpoint per
// provider. It implements the rewards engine's PositionSink and
// CheckpointStore collaborator interfaces.
type Ledger struct {
	clock    rewards.Clock
	notifier Notifier
	logger   *zap.Logger

	nextID          uint64
	positions       map[uint64]*Position
	totals          map[stakeKey]*big.Int
	providerStakes  map[providerStakeKey]*big.Int
	lastFullRemoval map[common.Address]uint64
}

func NewLedger(clock rewards.Clock, notifier Notifier, logger *zap.Logger) *Ledger {
	if clock == nil {
		clock = rewards.WallClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		clock:           clock,
		notifier:        notifier,
		logger:          logger,
		nextID:          1,
		positions:       make(map[uint64]*Position),
		totals:          make(map[stakeKey]*big.Int),
		providerStakes:  make(map[providerStakeKey]*big.Int),
		lastFullRemoval: make(map[common.Address]uint64),
	}
}

// AddLiquidityFor opens a position for provider. The rewards notifier runs
// first so reward settlement sees pre-mutation amounts.
func (l *Ledger) AddLiquidityFor(provider, pool, reserveToken common.Address, amount *big.Int) (uint64, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, fmt.Errorf("liquidity: amount must be positive")
	}
	if l.notifier != nil {
		if err := l.notifier.OnLiquidityAdded(provider, pool, reserveToken, amount); err != nil {
			return 0, fmt.Errorf("notify liquidity added: %w", err)
		}
	}

	id := l.nextID
	l.nextID++
	l.positions[id] = &Position{
		ID:           id,
		Provider:     provider,
		Pool:         pool,
		ReserveToken: reserveToken,
		Amount:       new(big.Int).Set(amount),
	}
	l.addStake(provider, pool, reserveToken, amount)

	l.logger.Debug("position opened",
		zap.Uint64("position_id", id),
		zap.String("provider", provider.Hex()),
		zap.String("pool", pool.Hex()),
		zap.String("amount", amount.String()),
	)
	return id, nil
}

// RemoveLiquidity shrinks or closes a position. A nil amount, or one at
// least the position size, removes it fully and records the provider's
// full-removal checkpoint.
func (l *Ledger) RemoveLiquidity(positionID uint64, amount *big.Int) error {
	pos, ok := l.positions[positionID]
	if !ok {
		return fmt.Errorf("liquidity: unknown position %d", positionID)
	}

	removed := pos.Amount
	if amount != nil && amount.Cmp(pos.Amount) < 0 {
		if amount.Sign() < 0 {
			return fmt.Errorf("liquidity: negative removal amount")
		}
		removed = amount
	}
	full := removed.Cmp(pos.Amount) == 0

	if l.notifier != nil {
		if err := l.notifier.OnLiquidityRemoved(pos.Provider, pos.Pool, pos.ReserveToken, removed); err != nil {
			return fmt.Errorf("notify liquidity removed: %w", err)
		}
	}

	l.subStake(pos.Provider, pos.Pool, pos.ReserveToken, removed)
	if full {
		delete(l.positions, positionID)
		l.lastFullRemoval[pos.Provider] = l.clock.Now()
	} else {
		pos.Amount = new(big.Int).Sub(pos.Amount, removed)
	}

	l.logger.Debug("position reduced",
		zap.Uint64("position_id", positionID),
		zap.String("amount", removed.String()),
		zap.Bool("closed", full),
	)
	return nil
}

// ProviderStakedAmount returns a provider's staked amount for a reserve.
func (l *Ledger) ProviderStakedAmount(provider, pool, reserve common.Address) *big.Int {
	if v, ok := l.providerStakes[providerStakeKey{provider, pool, reserve}]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// TotalStakedAmount returns the total staked amount for a reserve.
func (l *Ledger) TotalStakedAmount(pool, reserve common.Address) *big.Int {
	if v, ok := l.totals[stakeKey{pool, reserve}]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// Checkpoint returns the provider's last full position removal time, zero
// if none was recorded.
func (l *Ledger) Checkpoint(provider common.Address) uint64 {
	return l.lastFullRemoval[provider]
}

// Position returns a copy of the position with the given id.
func (l *Ledger) Position(id uint64) (Position, bool) {
	pos, ok := l.positions[id]
	if !ok {
		return Position{}, false
	}
	out := *pos
	out.Amount = new(big.Int).Set(pos.Amount)
	return out, true
}

func (l *Ledger) addStake(provider, pool, reserve common.Address, amount *big.Int) {
	tk := stakeKey{pool, reserve}
	if _, ok := l.totals[tk]; !ok {
		l.totals[tk] = big.NewInt(0)
	}
	l.totals[tk].Add(l.totals[tk], amount)

	pk := providerStakeKey{provider, pool, reserve}
	if _, ok := l.providerStakes[pk]; !ok {
		l.providerStakes[pk] = big.NewInt(0)
	}
	l.providerStakes[pk].Add(l.providerStakes[pk], amount)
}

func (l *Ledger) subStake(provider, pool, reserve common.Address, amount *big.Int) {
	if v, ok := l.totals[stakeKey{pool, reserve}]; ok {
		v.Sub(v, amount)
	}
	if v, ok := l.providerStakes[providerStakeKey{provider, pool, reserve}]; ok {
		v.Sub(v, amount)
	}
}
