package model

import "github.com/ethereum/go-ethereum/common"

// ProviderLastClaim is the single durable scalar kept per provider.
type ProviderLastClaim struct {
	Provider      common.Address `json:"provider"`
	LastClaimTime uint64         `json:"last_claim_time"`
}

// ProviderCheckpoint is the last externally recorded full-removal time for
// a provider, owned by the activity checkpoint collaborator.
type ProviderCheckpoint struct {
	Provider       common.Address `json:"provider"`
	CheckpointTime uint64         `json:"checkpoint_time"`
}

// Snapshot is a full, consistent copy of engine state plus the checkpoint
// book carried alongside it for replay resume.
type Snapshot struct {
	Programs       []PoolProgram          `json:"programs"`
	PoolStates     []PoolRewardsState     `json:"pool_states"`
	ProviderStates []ProviderRewardsState `json:"provider_states"`
	LastClaims     []ProviderLastClaim    `json:"last_claims"`
	Checkpoints    []ProviderCheckpoint   `json:"checkpoints"`
}
