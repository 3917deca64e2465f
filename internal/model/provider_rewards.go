package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ProviderRewardsState holds per (provider, pool, reserve) reward
// bookkeeping. Created on the provider's first stake and never deleted;
// it persists at zero after a full withdrawal for audit continuity.
//
// PendingBaseRewards is unmultiplied. BaseRewardsDebt carries rewards whose
// multiplier regime was interrupted, frozen together with the multiplier in
// force at that instant so later state changes cannot corrupt them.
type ProviderRewardsState struct {
	Provider                  common.Address `json:"provider"`
	Pool                      common.Address `json:"pool"`
	ReserveToken              common.Address `json:"reserve_token"`
	RewardPerTokenSnapshot    *big.Int       `json:"reward_per_token_snapshot"`
	PendingBaseRewards        *big.Int       `json:"pending_base_rewards"`
	TotalClaimedRewards       *big.Int       `json:"total_claimed_rewards"`
	EffectiveStakingTime      uint64         `json:"effective_staking_time"`
	BaseRewardsDebt           *big.Int       `json:"base_rewards_debt"`
	BaseRewardsDebtMultiplier uint32         `json:"base_rewards_debt_multiplier"`
	StakedAmount              *big.Int       `json:"staked_amount"`
}

// NewProviderRewardsState returns a zeroed state for (provider, pool, reserve).
func NewProviderRewardsState(provider, pool, reserve common.Address) *ProviderRewardsState {
	return &ProviderRewardsState{
		Provider:               provider,
		Pool:                   pool,
		ReserveToken:           reserve,
		RewardPerTokenSnapshot: big.NewInt(0),
		PendingBaseRewards:     big.NewInt(0),
		TotalClaimedRewards:    big.NewInt(0),
		BaseRewardsDebt:        big.NewInt(0),
		StakedAmount:           big.NewInt(0),
	}
}
