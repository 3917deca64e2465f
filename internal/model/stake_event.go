package model

// Input event kinds accepted by the replay runner. The host ledger exports
// its serialized call stream in this shape, one JSON object per line.
const (
	StakeEventLiquidityAdded   = "liquidity_added"
	StakeEventLiquidityRemoved = "liquidity_removed"
	StakeEventClaim            = "claim"
	StakeEventStakeRewards     = "stake_rewards"
	StakeEventUpdate           = "update"
	StakeEventCheckpoint       = "checkpoint"
	StakeEventProgramAdded     = "program_added"
	StakeEventProgramRemoved   = "program_removed"
	StakeEventProgramExtended  = "program_extended"
)

// StakeEventRecord is one replayable host event. Fields are populated per
// kind; amounts and rates are decimal strings. Seq orders events with equal
// timestamps.
type StakeEventRecord struct {
	Seq           uint64   `json:"seq"`
	Timestamp     uint64   `json:"timestamp"`
	Kind          string   `json:"kind"`
	Provider      string   `json:"provider,omitempty"`
	Providers     []string `json:"providers,omitempty"`
	Pool          string   `json:"pool,omitempty"`
	ReserveToken  string   `json:"reserve_token,omitempty"`
	ReserveTokens []string `json:"reserve_tokens,omitempty"`
	RewardShares  []uint32 `json:"reward_shares,omitempty"`
	Amount        string   `json:"amount,omitempty"`
	EndTime       uint64   `json:"end_time,omitempty"`
	RewardRate    string   `json:"reward_rate,omitempty"`
}
