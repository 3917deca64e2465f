package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolRewardsState holds per (pool, reserve) accrual state. It is mutated
// only by settlement. TotalStaked mirrors the liquidity ledger's total for
// the reserve and is updated only through stake-change notifications.
type PoolRewardsState struct {
	Pool                common.Address `json:"pool"`
	ReserveToken        common.Address `json:"reserve_token"`
	LastUpdateTime      uint64         `json:"last_update_time"`
	RewardPerToken      *big.Int       `json:"reward_per_token"`
	TotalClaimedRewards *big.Int       `json:"total_claimed_rewards"`
	TotalStaked         *big.Int       `json:"total_staked"`
}

// NewPoolRewardsState returns a zeroed state for (pool, reserve).
func NewPoolRewardsState(pool, reserve common.Address) *PoolRewardsState {
	return &PoolRewardsState{
		Pool:                pool,
		ReserveToken:        reserve,
		RewardPerToken:      big.NewInt(0),
		TotalClaimedRewards: big.NewInt(0),
		TotalStaked:         big.NewInt(0),
	}
}
