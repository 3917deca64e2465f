package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PPMResolution is the parts-per-million fixed point used for reward shares
// and staking multipliers.
const PPMResolution uint32 = 1_000_000

// PoolProgram is a time-boxed reward emission schedule attached to one pool.
// The reserve set is immutable after creation; EndTime may only be extended.
type PoolProgram struct {
	Pool          common.Address    `json:"pool"`
	ReserveTokens [2]common.Address `json:"reserve_tokens"`
	RewardShares  [2]uint32         `json:"reward_shares"`
	StartTime     uint64            `json:"start_time"`
	EndTime       uint64            `json:"end_time"`
	RewardRate    *big.Int          `json:"reward_rate"`
}

// ReserveIndex returns the position of token in the program's reserve set.
func (p *PoolProgram) ReserveIndex(token common.Address) (int, bool) {
	for i, reserve := range p.ReserveTokens {
		if reserve == token {
			return i, true
		}
	}
	return 0, false
}

// Participating reports whether the program is still emitting at ts.
// Lapse is implicit: reaching EndTime ends participation without deleting
// any accrued state.
func (p *PoolProgram) Participating(ts uint64) bool {
	return p.EndTime > ts
}
