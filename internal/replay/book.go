package replay

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRewards/internal/model"
)

// CheckpointBook is the replay-side activity checkpoint store: it records
// the host's full-removal checkpoints from the event stream and serves
// them to the engine's multiplier calculation.
type CheckpointBook struct {
	times map[common.Address]uint64
}

func NewCheckpointBook() *CheckpointBook {
	return &CheckpointBook{times: make(map[common.Address]uint64)}
}

// Set records a checkpoint; earlier times never overwrite later ones.
func (b *CheckpointBook) Set(provider common.Address, ts uint64) {
	if ts > b.times[provider] {
		b.times[provider] = ts
	}
}

// Checkpoint implements the engine's checkpoint collaborator.
func (b *CheckpointBook) Checkpoint(provider common.Address) uint64 {
	return b.times[provider]
}

// Snapshot returns the book's contents ordered by provider.
func (b *CheckpointBook) Snapshot() []model.ProviderCheckpoint {
	out := make([]model.ProviderCheckpoint, 0, len(b.times))
	for provider, ts := range b.times {
		out = append(out, model.ProviderCheckpoint{Provider: provider, CheckpointTime: ts})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Provider.Bytes(), out[j].Provider.Bytes()) < 0
	})
	return out
}

// Restore replaces the book's contents.
func (b *CheckpointBook) Restore(checkpoints []model.ProviderCheckpoint) {
	b.times = make(map[common.Address]uint64, len(checkpoints))
	for _, cp := range checkpoints {
		b.times[cp.Provider] = cp.CheckpointTime
	}
}
