package rewards

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRewards/internal/model"
)

// Snapshot returns a deep, deterministically ordered copy of engine state
// for persistence. The checkpoint book belongs to the activity checkpoint
// collaborator and is not filled here.
func (e *Engine) Snapshot() model.Snapshot {
	var snap model.Snapshot

	for _, prog := range e.registry.Programs() {
		copied := *prog
		copied.RewardRate = new(big.Int).Set(prog.RewardRate)
		snap.Programs = append(snap.Programs, copied)
	}

	poolKeys := make([]poolReserveKey, 0, len(e.poolStates))
	for key := range e.poolStates {
		poolKeys = append(poolKeys, key)
	}
	sort.Slice(poolKeys, func(i, j int) bool {
		if c := bytes.Compare(poolKeys[i].pool.Bytes(), poolKeys[j].pool.Bytes()); c != 0 {
			return c < 0
		}
		return bytes.Compare(poolKeys[i].reserve.Bytes(), poolKeys[j].reserve.Bytes()) < 0
	})
	for _, key := range poolKeys {
		st := e.poolStates[key]
		snap.PoolStates = append(snap.PoolStates, model.PoolRewardsState{
			Pool:                st.Pool,
			ReserveToken:        st.ReserveToken,
			LastUpdateTime:      st.LastUpdateTime,
			RewardPerToken:      new(big.Int).Set(st.RewardPerToken),
			TotalClaimedRewards: new(big.Int).Set(st.TotalClaimedRewards),
			TotalStaked:         new(big.Int).Set(st.TotalStaked),
		})
	}

	provKeys := make([]providerKey, 0, len(e.providerStates))
	for key := range e.providerStates {
		provKeys = append(provKeys, key)
	}
	sort.Slice(provKeys, func(i, j int) bool {
		if c := bytes.Compare(provKeys[i].provider.Bytes(), provKeys[j].provider.Bytes()); c != 0 {
			return c < 0
		}
		if c := bytes.Compare(provKeys[i].pool.Bytes(), provKeys[j].pool.Bytes()); c != 0 {
			return c < 0
		}
		return bytes.Compare(provKeys[i].reserve.Bytes(), provKeys[j].reserve.Bytes()) < 0
	})
	for _, key := range provKeys {
		ps := e.providerStates[key]
		snap.ProviderStates = append(snap.ProviderStates, model.ProviderRewardsState{
			Provider:                  ps.Provider,
			Pool:                      ps.Pool,
			ReserveToken:              ps.ReserveToken,
			RewardPerTokenSnapshot:    new(big.Int).Set(ps.RewardPerTokenSnapshot),
			PendingBaseRewards:        new(big.Int).Set(ps.PendingBaseRewards),
			TotalClaimedRewards:       new(big.Int).Set(ps.TotalClaimedRewards),
			EffectiveStakingTime:      ps.EffectiveStakingTime,
			BaseRewardsDebt:           new(big.Int).Set(ps.BaseRewardsDebt),
			BaseRewardsDebtMultiplier: ps.BaseRewardsDebtMultiplier,
			StakedAmount:              new(big.Int).Set(ps.StakedAmount),
		})
	}

	claimants := make([]common.Address, 0, len(e.lastClaim))
	for provider := range e.lastClaim {
		claimants = append(claimants, provider)
	}
	sort.Slice(claimants, func(i, j int) bool {
		return bytes.Compare(claimants[i].Bytes(), claimants[j].Bytes()) < 0
	})
	for _, provider := range claimants {
		snap.LastClaims = append(snap.LastClaims, model.ProviderLastClaim{
			Provider:      provider,
			LastClaimTime: e.lastClaim[provider],
		})
	}

	return snap
}

// Restore replaces engine state with a snapshot's contents.
func (e *Engine) Restore(snap model.Snapshot) {
	e.registry = NewProgramRegistry()
	e.poolStates = make(map[poolReserveKey]*model.PoolRewardsState, len(snap.PoolStates))
	e.providerStates = make(map[providerKey]*model.ProviderRewardsState, len(snap.ProviderStates))
	e.lastClaim = make(map[common.Address]uint64, len(snap.LastClaims))

	for i := range snap.Programs {
		prog := snap.Programs[i]
		prog.RewardRate = new(big.Int).Set(snap.Programs[i].RewardRate)
		e.registry.programs[prog.Pool] = &prog
	}
	for i := range snap.PoolStates {
		src := snap.PoolStates[i]
		e.poolStates[poolReserveKey{src.Pool, src.ReserveToken}] = &model.PoolRewardsState{
			Pool:                src.Pool,
			ReserveToken:        src.ReserveToken,
			LastUpdateTime:      src.LastUpdateTime,
			RewardPerToken:      new(big.Int).Set(src.RewardPerToken),
			TotalClaimedRewards: new(big.Int).Set(src.TotalClaimedRewards),
			TotalStaked:         new(big.Int).Set(src.TotalStaked),
		}
	}
	for i := range snap.ProviderStates {
		src := snap.ProviderStates[i]
		e.providerStates[providerKey{src.Provider, src.Pool, src.ReserveToken}] = &model.ProviderRewardsState{
			Provider:                  src.Provider,
			Pool:                      src.Pool,
			ReserveToken:              src.ReserveToken,
			RewardPerTokenSnapshot:    new(big.Int).Set(src.RewardPerTokenSnapshot),
			PendingBaseRewards:        new(big.Int).Set(src.PendingBaseRewards),
			TotalClaimedRewards:       new(big.Int).Set(src.TotalClaimedRewards),
			EffectiveStakingTime:      src.EffectiveStakingTime,
			BaseRewardsDebt:           new(big.Int).Set(src.BaseRewardsDebt),
			BaseRewardsDebtMultiplier: src.BaseRewardsDebtMultiplier,
			StakedAmount:              new(big.Int).Set(src.StakedAmount),
		}
	}
	for _, claim := range snap.LastClaims {
		e.lastClaim[claim.Provider] = claim.LastClaimTime
	}
}
