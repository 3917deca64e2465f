package rewards

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityRewards/internal/model"
)

type poolReserveKey struct {
	pool    common.Address
	reserve common.Address
}

type providerKey struct {
	provider common.Address
	pool     common.Address
	reserve  common.Address
}

// Engine is the reward distribution facade. Every operation is a single
// atomic computation over current state: the caller serializes all
// state-mutating calls (single writer), and settlement always runs before
// any stake mutation within the same operation.
type Engine struct {
	clock  Clock
	collab Collaborators
	logger *zap.Logger

	registry       *ProgramRegistry
	poolStates     map[poolReserveKey]*model.PoolRewardsState
	providerStates map[providerKey]*model.ProviderRewardsState
	lastClaim      map[common.Address]uint64
}

func NewEngine(clock Clock, collab Collaborators, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = WallClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		clock:          clock,
		collab:         collab,
		logger:         logger,
		registry:       NewProgramRegistry(),
		poolStates:     make(map[poolReserveKey]*model.PoolRewardsState),
		providerStates: make(map[providerKey]*model.ProviderRewardsState),
		lastClaim:      make(map[common.Address]uint64),
	}
}

// SetPositionSink wires the position sink after construction. The liquidity
// ledger needs the engine as its notifier, so the two cannot be built in
// one step.
func (e *Engine) SetPositionSink(sink PositionSink) {
	e.collab.Positions = sink
}

// Registry exposes derived participation predicates.
func (e *Engine) IsParticipating(pool common.Address) bool {
	return e.registry.IsParticipating(pool, e.clock.Now())
}

func (e *Engine) IsReserveParticipating(pool, reserve common.Address) bool {
	return e.registry.IsReserveParticipating(pool, reserve, e.clock.Now())
}

// LastClaimTime returns the provider's last claim timestamp, zero if never.
func (e *Engine) LastClaimTime(provider common.Address) uint64 {
	return e.lastClaim[provider]
}

// ProviderStakedAmount returns the mirrored staked amount for a provider.
func (e *Engine) ProviderStakedAmount(provider, pool, reserve common.Address) *big.Int {
	if ps, ok := e.providerStates[providerKey{provider, pool, reserve}]; ok {
		return new(big.Int).Set(ps.StakedAmount)
	}
	return big.NewInt(0)
}

// TotalStakedAmount returns the mirrored total staked amount for a reserve.
func (e *Engine) TotalStakedAmount(pool, reserve common.Address) *big.Int {
	if st, ok := e.poolStates[poolReserveKey{pool, reserve}]; ok {
		return new(big.Int).Set(st.TotalStaked)
	}
	return big.NewInt(0)
}

// AddProgram registers a reward program for pool starting now. Any lapsed
// predecessor is settled to its own end first so its emissions are final
// before the new schedule takes over.
func (e *Engine) AddProgram(actor, pool common.Address, reserves [2]common.Address, shares [2]uint32, endTime uint64, rate *big.Int) error {
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	now := e.clock.Now()

	if old, ok := e.registry.Get(pool); ok {
		e.settleProgramPools(old, now)
	}
	if _, err := e.registry.Add(pool, reserves, shares, endTime, rate, now); err != nil {
		return err
	}

	e.logger.Info("program added",
		zap.String("pool", pool.Hex()),
		zap.Uint64("end_time", endTime),
		zap.String("reward_rate", rate.String()),
	)
	e.emit(model.RewardEvent{Kind: model.EventProgramAdded, Timestamp: now, Pool: pool.Hex(), EndTime: endTime})
	return nil
}

// RemoveProgram deletes a participating program. Pool and provider reward
// state survive; the final emission interval is settled before deletion so
// nothing already earned is lost.
func (e *Engine) RemoveProgram(actor, pool common.Address) error {
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	now := e.clock.Now()

	if prog, ok := e.registry.Get(pool); ok {
		e.settleProgramPools(prog, now)
	}
	if _, err := e.registry.Remove(pool, now); err != nil {
		return err
	}

	e.logger.Info("program removed", zap.String("pool", pool.Hex()))
	e.emit(model.RewardEvent{Kind: model.EventProgramRemoved, Timestamp: now, Pool: pool.Hex()})
	return nil
}

// ExtendProgram moves a participating program's end time strictly forward.
func (e *Engine) ExtendProgram(actor, pool common.Address, newEndTime uint64) error {
	if err := e.requireAdmin(actor); err != nil {
		return err
	}
	now := e.clock.Now()

	if _, err := e.registry.Extend(pool, newEndTime, now); err != nil {
		return err
	}

	e.logger.Info("program extended", zap.String("pool", pool.Hex()), zap.Uint64("end_time", newEndTime))
	e.emit(model.RewardEvent{Kind: model.EventProgramExtended, Timestamp: now, Pool: pool.Hex(), EndTime: newEndTime})
	return nil
}

// OnLiquidityAdded settles the reserve and the provider's position, then
// applies the stake delta to the mirror. Zero-amount notifications settle
// and change nothing. A 0→positive transition anchors the continuous
// staking duration at now.
func (e *Engine) OnLiquidityAdded(provider, pool, reserve common.Address, amount *big.Int) error {
	delta, err := stakeDelta(amount)
	if err != nil {
		return err
	}
	now := e.clock.Now()

	st := e.poolState(pool, reserve)
	prog, reserveIdx := e.programFor(pool, reserve)
	if err := e.settlePool(prog, reserveIdx, st, now); err != nil {
		return err
	}

	ps := e.providerState(provider, pool, reserve)
	if err := e.settleProvider(ps, st); err != nil {
		return err
	}
	e.observeCheckpoint(ps, now)

	if ps.StakedAmount.Sign() == 0 && delta.Sign() > 0 {
		ps.EffectiveStakingTime = now
	}
	ps.StakedAmount.Add(ps.StakedAmount, delta)
	st.TotalStaked.Add(st.TotalStaked, delta)
	return nil
}

// OnLiquidityRemoved settles, then applies the removal to the mirror. When
// the provider's stake returns to zero, pending rewards are frozen into
// debt at the multiplier in force so a later restake cannot retroactively
// inflate the bonus for the resumed position.
func (e *Engine) OnLiquidityRemoved(provider, pool, reserve common.Address, amount *big.Int) error {
	delta, err := stakeDelta(amount)
	if err != nil {
		return err
	}
	now := e.clock.Now()

	st := e.poolState(pool, reserve)
	prog, reserveIdx := e.programFor(pool, reserve)
	if err := e.settlePool(prog, reserveIdx, st, now); err != nil {
		return err
	}

	ps := e.providerState(provider, pool, reserve)
	if err := e.settleProvider(ps, st); err != nil {
		return err
	}
	e.observeCheckpoint(ps, now)

	if ps.StakedAmount.Cmp(delta) < 0 {
		return fmt.Errorf("%w: removing %s exceeds staked %s for provider %s",
			ErrArithmetic, delta.String(), ps.StakedAmount.String(), provider.Hex())
	}
	if st.TotalStaked.Cmp(delta) < 0 {
		return fmt.Errorf("%w: removing %s exceeds pool total %s", ErrArithmetic, delta.String(), st.TotalStaked.String())
	}

	ps.StakedAmount.Sub(ps.StakedAmount, delta)
	st.TotalStaked.Sub(st.TotalStaked, delta)

	if delta.Sign() > 0 && ps.StakedAmount.Sign() == 0 {
		mult := e.multiplierFor(ps, now)
		mergeDebt(ps, ps.PendingBaseRewards, mult)
		ps.PendingBaseRewards = big.NewInt(0)
	}
	return nil
}

// Rewards returns the provider's total payable amount, optionally limited
// to a pool subset. It is a pure view: settlement runs as a dry run and no
// state changes, so repeated polling returns identical values.
func (e *Engine) Rewards(provider common.Address, pools ...common.Address) (*big.Int, error) {
	filter, err := poolFilter(pools)
	if err != nil {
		return nil, err
	}

	views, err := e.providerViews(provider, e.clock.Now(), filter)
	if err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	for _, v := range views {
		total.Add(total, v.payable)
	}
	return total, nil
}

// ClaimRewards pays out everything the provider has earned across all
// pools. Pending and debt balances are zeroed atomically with issuance, the
// last claim time is recorded, and a domain event is emitted. A mint
// failure aborts with no state change.
func (e *Engine) ClaimRewards(provider common.Address) (*big.Int, error) {
	now := e.clock.Now()
	views, err := e.providerViews(provider, now, nil)
	if err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	for _, v := range views {
		total.Add(total, v.payable)
	}
	if total.Sign() == 0 {
		return nil, fmt.Errorf("%w: provider %s", ErrNoRewards, provider.Hex())
	}
	if e.collab.Issuer == nil {
		return nil, fmt.Errorf("%w: token issuer not configured", ErrConfiguration)
	}
	if err := e.collab.Issuer.Mint(provider, total); err != nil {
		return nil, fmt.Errorf("mint rewards: %w", err)
	}

	for _, v := range views {
		e.applySettlement(v)
		v.ps.PendingBaseRewards = big.NewInt(0)
		v.ps.BaseRewardsDebt = big.NewInt(0)
		v.ps.BaseRewardsDebtMultiplier = 0
		v.ps.TotalClaimedRewards.Add(v.ps.TotalClaimedRewards, v.payable)
		v.st.TotalClaimedRewards.Add(v.st.TotalClaimedRewards, v.payable)
	}
	e.lastClaim[provider] = now

	e.logger.Info("rewards claimed",
		zap.String("provider", provider.Hex()),
		zap.String("amount", total.String()),
	)
	e.emit(model.RewardEvent{Kind: model.EventRewardsClaimed, Timestamp: now, Provider: provider.Hex(), Amount: total.String()})
	return total, nil
}

// StakeRewards claims up to min(maxAmount, payable) across all pools and
// routes the claimed amount into a new position in pool via the position
// sink instead of paying the provider out. Amounts left unclaimed are
// frozen into debt at their in-force multiplier, since the recorded claim
// resets the multiplier anchor. Last-claim semantics match ClaimRewards.
func (e *Engine) StakeRewards(provider common.Address, maxAmount *big.Int, pool common.Address) (*big.Int, uint64, error) {
	now := e.clock.Now()

	prog, ok := e.registry.Get(pool)
	if !ok || !prog.Participating(now) {
		return nil, 0, fmt.Errorf("%w: pool %s", ErrNotParticipating, pool.Hex())
	}
	if e.collab.Issuer == nil || e.collab.Positions == nil {
		return nil, 0, fmt.Errorf("%w: issuer or position sink not configured", ErrConfiguration)
	}

	// Settle and apply any outstanding checkpoint up front, so the nested
	// stake notification from the position sink cannot observe it halfway
	// through the commit below.
	if err := e.settleAll(provider, now); err != nil {
		return nil, 0, err
	}

	views, err := e.providerViews(provider, now, nil)
	if err != nil {
		return nil, 0, err
	}
	total := big.NewInt(0)
	for _, v := range views {
		total.Add(total, v.payable)
	}
	if total.Sign() == 0 {
		return nil, 0, fmt.Errorf("%w: provider %s", ErrNoRewards, provider.Hex())
	}

	take := new(big.Int).Set(total)
	if maxAmount != nil && maxAmount.Cmp(take) < 0 {
		take.Set(maxAmount)
	}
	if take.Sign() <= 0 {
		return nil, 0, fmt.Errorf("%w: provider %s", ErrNoRewards, provider.Hex())
	}

	if err := e.collab.Issuer.Mint(provider, take); err != nil {
		return nil, 0, fmt.Errorf("mint rewards: %w", err)
	}

	// Both collaborator calls must succeed before any bookkeeping changes,
	// otherwise a sink failure would destroy the claim it was meant to
	// restake. The nested stake notification settles the destination
	// position at the same instant the views were taken, so committing the
	// views afterwards writes identical values.
	positionID, err := e.collab.Positions.AddLiquidityFor(provider, pool, prog.ReserveTokens[0], take)
	if err != nil {
		return nil, 0, fmt.Errorf("add liquidity for %s: %w", provider.Hex(), err)
	}

	remaining := new(big.Int).Set(take)
	for _, v := range views {
		e.applySettlement(v)
		claimed := e.consumePayable(v, remaining)
		remaining.Sub(remaining, claimed)
		v.ps.TotalClaimedRewards.Add(v.ps.TotalClaimedRewards, claimed)
		v.st.TotalClaimedRewards.Add(v.st.TotalClaimedRewards, claimed)
	}
	e.lastClaim[provider] = now

	e.logger.Info("rewards staked",
		zap.String("provider", provider.Hex()),
		zap.String("pool", pool.Hex()),
		zap.String("amount", take.String()),
		zap.Uint64("position_id", positionID),
	)
	e.emit(model.RewardEvent{
		Kind: model.EventRewardsStaked, Timestamp: now, Provider: provider.Hex(),
		Pool: pool.Hex(), Amount: take.String(), PositionID: positionID,
	})
	return take, positionID, nil
}

// UpdateRewards settles the given providers' positions without claiming.
// Duplicate and unknown providers are skipped silently; the call is
// idempotent at a fixed clock reading.
func (e *Engine) UpdateRewards(providers []common.Address) error {
	now := e.clock.Now()
	seen := make(map[common.Address]struct{}, len(providers))
	for _, provider := range providers {
		if _, dup := seen[provider]; dup {
			continue
		}
		seen[provider] = struct{}{}

		if err := e.settleAll(provider, now); err != nil {
			return err
		}
	}
	return nil
}

// settleAll advances every position of the provider to now and applies any
// outstanding checkpoint. Payable amounts are unchanged; balances only move
// between their pending and debt representations.
func (e *Engine) settleAll(provider common.Address, now uint64) error {
	for _, key := range e.sortedProviderKeys(provider) {
		ps := e.providerStates[key]
		st := e.poolState(key.pool, key.reserve)
		prog, reserveIdx := e.programFor(key.pool, key.reserve)
		if prog != nil {
			if err := e.settlePool(prog, reserveIdx, st, now); err != nil {
				return err
			}
			if err := e.settleProvider(ps, st); err != nil {
				return err
			}
		}
		e.observeCheckpoint(ps, now)
	}
	return nil
}

// settledView is one provider position advanced to now without mutation.
type settledView struct {
	ps         *model.ProviderRewardsState
	st         *model.PoolRewardsState
	rpt        *big.Int
	settleTime uint64
	fresh      *big.Int // pending + earned since snapshot, unmultiplied
	multiplier uint32
	payable    *big.Int
}

// providerViews dry-runs settlement for every position of the provider, in
// deterministic (pool, reserve) order, optionally filtered by pool.
func (e *Engine) providerViews(provider common.Address, now uint64, filter map[common.Address]struct{}) ([]*settledView, error) {
	checkpoint := e.checkpointOf(provider)
	lastClaim := e.lastClaim[provider]

	var views []*settledView
	for _, key := range e.sortedProviderKeys(provider) {
		if filter != nil {
			if _, ok := filter[key.pool]; !ok {
				continue
			}
		}
		ps := e.providerStates[key]
		st := e.poolStateView(key.pool, key.reserve)
		prog, reserveIdx := e.programFor(key.pool, key.reserve)

		rpt, settleTime := settledRewardPerToken(prog, st, reserveIdx, now)
		earned, err := earnedSince(ps, rpt)
		if err != nil {
			return nil, err
		}
		fresh := new(big.Int).Add(ps.PendingBaseRewards, earned)

		mult := currentMultiplier(ps.EffectiveStakingTime, checkpoint, lastClaim, now)

		payable := applyMultiplier(ps.BaseRewardsDebt, ps.BaseRewardsDebtMultiplier)
		payable.Add(payable, applyMultiplier(fresh, mult))

		views = append(views, &settledView{
			ps:         ps,
			st:         st,
			rpt:        rpt,
			settleTime: settleTime,
			fresh:      fresh,
			multiplier: mult,
			payable:    payable,
		})
	}
	return views, nil
}

// applySettlement commits a dry-run view: the pool accumulator advances and
// the provider's snapshot catches up, folding earned rewards into pending.
func (e *Engine) applySettlement(v *settledView) {
	v.st.RewardPerToken = new(big.Int).Set(v.rpt)
	v.st.LastUpdateTime = v.settleTime
	v.ps.RewardPerTokenSnapshot = new(big.Int).Set(v.rpt)
	v.ps.PendingBaseRewards = new(big.Int).Set(v.fresh)
}

// consumePayable deducts up to limit from the view's payable balance, debt
// tranche first, and freezes whatever fresh remainder is left into debt at
// the view's multiplier. Returns the amount consumed. Base balances are
// reduced with round-up division so dust can never be paid twice.
func (e *Engine) consumePayable(v *settledView, limit *big.Int) *big.Int {
	ps := v.ps
	if limit.Cmp(v.payable) >= 0 {
		ps.PendingBaseRewards = big.NewInt(0)
		ps.BaseRewardsDebt = big.NewInt(0)
		ps.BaseRewardsDebtMultiplier = 0
		return new(big.Int).Set(v.payable)
	}

	claimed := new(big.Int).Set(limit)
	remaining := new(big.Int).Set(limit)

	debtPayable := applyMultiplier(ps.BaseRewardsDebt, ps.BaseRewardsDebtMultiplier)
	if remaining.Sign() > 0 && debtPayable.Sign() > 0 {
		if remaining.Cmp(debtPayable) >= 0 {
			remaining.Sub(remaining, debtPayable)
			ps.BaseRewardsDebt = big.NewInt(0)
			ps.BaseRewardsDebtMultiplier = 0
		} else {
			consumed := unapplyMultiplier(remaining, ps.BaseRewardsDebtMultiplier)
			if consumed.Cmp(ps.BaseRewardsDebt) > 0 {
				consumed.Set(ps.BaseRewardsDebt)
			}
			ps.BaseRewardsDebt = new(big.Int).Sub(ps.BaseRewardsDebt, consumed)
			remaining.SetInt64(0)
		}
	}

	if remaining.Sign() > 0 {
		consumed := unapplyMultiplier(remaining, v.multiplier)
		if consumed.Cmp(ps.PendingBaseRewards) > 0 {
			consumed.Set(ps.PendingBaseRewards)
		}
		ps.PendingBaseRewards = new(big.Int).Sub(ps.PendingBaseRewards, consumed)
	}

	// The claim resets the multiplier anchor, so any fresh remainder keeps
	// its earned bonus only by freezing into debt now.
	mergeDebt(ps, ps.PendingBaseRewards, v.multiplier)
	ps.PendingBaseRewards = big.NewInt(0)
	return claimed
}

// mergeDebt folds base rewards earned under multiplier mult into the debt
// tranche. Same-multiplier tranches add directly; differing regimes are
// combined value-exactly at PPM so no previously earned bonus is lost.
func mergeDebt(ps *model.ProviderRewardsState, base *big.Int, mult uint32) {
	if base.Sign() == 0 {
		return
	}
	if ps.BaseRewardsDebt.Sign() == 0 {
		ps.BaseRewardsDebt = new(big.Int).Set(base)
		ps.BaseRewardsDebtMultiplier = mult
		return
	}
	if ps.BaseRewardsDebtMultiplier == mult {
		ps.BaseRewardsDebt = new(big.Int).Add(ps.BaseRewardsDebt, base)
		return
	}
	combined := applyMultiplier(ps.BaseRewardsDebt, ps.BaseRewardsDebtMultiplier)
	combined.Add(combined, applyMultiplier(base, mult))
	ps.BaseRewardsDebt = combined
	ps.BaseRewardsDebtMultiplier = model.PPMResolution
}

// settleProgramPools settles both reserves of a program.
func (e *Engine) settleProgramPools(prog *model.PoolProgram, now uint64) {
	for idx, reserve := range prog.ReserveTokens {
		st := e.poolState(prog.Pool, reserve)
		// settledRewardPerToken is monotonic, settlePool cannot fail here.
		rpt, settleTime := settledRewardPerToken(prog, st, idx, now)
		st.RewardPerToken = rpt
		st.LastUpdateTime = settleTime
	}
}

// settlePool advances the accumulator for one reserve in place.
func (e *Engine) settlePool(prog *model.PoolProgram, reserveIdx int, st *model.PoolRewardsState, now uint64) error {
	rpt, settleTime := settledRewardPerToken(prog, st, reserveIdx, now)
	if rpt.Cmp(st.RewardPerToken) < 0 {
		return fmt.Errorf("%w: reward per token decreased for pool %s", ErrArithmetic, st.Pool.Hex())
	}
	st.RewardPerToken = rpt
	st.LastUpdateTime = settleTime
	return nil
}

// settleProvider folds the accumulator advance into pending base rewards
// and moves the provider's snapshot up to the settled value.
func (e *Engine) settleProvider(ps *model.ProviderRewardsState, st *model.PoolRewardsState) error {
	earned, err := earnedSince(ps, st.RewardPerToken)
	if err != nil {
		return err
	}
	ps.PendingBaseRewards.Add(ps.PendingBaseRewards, earned)
	ps.RewardPerTokenSnapshot = new(big.Int).Set(st.RewardPerToken)
	return nil
}

// multiplierFor evaluates the provider's current multiplier for a position.
func (e *Engine) multiplierFor(ps *model.ProviderRewardsState, now uint64) uint32 {
	return currentMultiplier(ps.EffectiveStakingTime, e.checkpointOf(ps.Provider), e.lastClaim[ps.Provider], now)
}

// observeCheckpoint applies an external full-removal checkpoint that has
// moved past the position's anchor: pending rewards keep the multiplier
// earned up to the checkpoint instant by freezing into debt, and the
// position re-anchors at the checkpoint so later accrual starts a fresh
// duration from there.
func (e *Engine) observeCheckpoint(ps *model.ProviderRewardsState, now uint64) {
	cp := e.checkpointOf(ps.Provider)
	anchor := ps.EffectiveStakingTime
	if lc := e.lastClaim[ps.Provider]; lc > anchor {
		anchor = lc
	}
	if cp <= anchor || cp > now {
		return
	}
	mergeDebt(ps, ps.PendingBaseRewards, StakingMultiplier(cp-anchor))
	ps.PendingBaseRewards = big.NewInt(0)
	ps.EffectiveStakingTime = cp
}

// programFor resolves the program covering (pool, reserve). A missing
// program, or a reserve outside the program's set, yields nil: state is
// still mirrored and claimable but accrues nothing further.
func (e *Engine) programFor(pool, reserve common.Address) (*model.PoolProgram, int) {
	prog, ok := e.registry.Get(pool)
	if !ok {
		return nil, 0
	}
	idx, ok := prog.ReserveIndex(reserve)
	if !ok {
		return nil, 0
	}
	return prog, idx
}

func (e *Engine) poolState(pool, reserve common.Address) *model.PoolRewardsState {
	key := poolReserveKey{pool, reserve}
	st, ok := e.poolStates[key]
	if !ok {
		st = model.NewPoolRewardsState(pool, reserve)
		e.poolStates[key] = st
	}
	return st
}

// poolStateView returns the pool state without creating a map entry, so
// read paths stay side-effect-free. A provider state always has a matching
// pool state; the transient fallback only covers restored partial data.
func (e *Engine) poolStateView(pool, reserve common.Address) *model.PoolRewardsState {
	if st, ok := e.poolStates[poolReserveKey{pool, reserve}]; ok {
		return st
	}
	return model.NewPoolRewardsState(pool, reserve)
}

func (e *Engine) providerState(provider, pool, reserve common.Address) *model.ProviderRewardsState {
	key := providerKey{provider, pool, reserve}
	ps, ok := e.providerStates[key]
	if !ok {
		ps = model.NewProviderRewardsState(provider, pool, reserve)
		e.providerStates[key] = ps
	}
	return ps
}

func (e *Engine) sortedProviderKeys(provider common.Address) []providerKey {
	keys := make([]providerKey, 0, 4)
	for key := range e.providerStates {
		if key.provider == provider {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].pool.Bytes(), keys[j].pool.Bytes()); c != 0 {
			return c < 0
		}
		return bytes.Compare(keys[i].reserve.Bytes(), keys[j].reserve.Bytes()) < 0
	})
	return keys
}

func (e *Engine) checkpointOf(provider common.Address) uint64 {
	if e.collab.Checkpoints == nil {
		return 0
	}
	return e.collab.Checkpoints.Checkpoint(provider)
}

func (e *Engine) requireAdmin(actor common.Address) error {
	if e.collab.Access == nil {
		return nil
	}
	if !e.collab.Access.IsAdmin(actor) {
		return fmt.Errorf("%w: actor %s", ErrAccessDenied, actor.Hex())
	}
	return nil
}

func (e *Engine) emit(event model.RewardEvent) {
	if e.collab.Events == nil {
		return
	}
	if err := e.collab.Events.AppendEvents([]model.RewardEvent{event}); err != nil {
		e.logger.Warn("append event", zap.String("kind", event.Kind), zap.Error(err))
	}
}

// stakeDelta validates a notification amount. Nil counts as zero.
func stakeDelta(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative stake delta %s", ErrArithmetic, amount.String())
	}
	return amount, nil
}

// poolFilter validates a pool subset, requiring unique ids.
func poolFilter(pools []common.Address) (map[common.Address]struct{}, error) {
	if len(pools) == 0 {
		return nil, nil
	}
	filter := make(map[common.Address]struct{}, len(pools))
	for _, pool := range pools {
		if _, dup := filter[pool]; dup {
			return nil, fmt.Errorf("%w: pool %s listed twice", ErrDuplicateInput, pool.Hex())
		}
		filter[pool] = struct{}{}
	}
	return filter, nil
}
