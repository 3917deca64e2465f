package model

// Domain event kinds emitted by the rewards engine.
const (
	EventRewardsClaimed  = "rewards_claimed"
	EventRewardsStaked   = "rewards_staked"
	EventProgramAdded    = "program_added"
	EventProgramRemoved  = "program_removed"
	EventProgramExtended = "program_extended"
)

// RewardEvent records a state transition of the rewards engine for
// downstream consumers. Amounts are decimal strings.
type RewardEvent struct {
	Kind       string `json:"kind"`
	Timestamp  uint64 `json:"timestamp"`
	Provider   string `json:"provider,omitempty"`
	Pool       string `json:"pool,omitempty"`
	Amount     string `json:"amount,omitempty"`
	PositionID uint64 `json:"position_id,omitempty"`
	EndTime    uint64 `json:"end_time,omitempty"`
}
