package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRewards/internal/model"
)

// TokenIssuer mints reward tokens. It is called exactly once per successful
// claim or stake-rewards operation; a mint failure aborts the operation
// with no state change.
type TokenIssuer interface {
	Mint(provider common.Address, amount *big.Int) error
}

// CheckpointStore reports the last externally recorded full-removal time
// for a provider, zero when none exists. Read-only input to the multiplier.
type CheckpointStore interface {
	Checkpoint(provider common.Address) uint64
}

// PositionSink opens a new liquidity position funded by claimed rewards and
// returns its id.
type PositionSink interface {
	AddLiquidityFor(provider, pool, reserveToken common.Address, amount *big.Int) (uint64, error)
}

// AccessController gates administrative calls. A nil controller leaves the
// engine ungated; role management itself lives outside the engine.
type AccessController interface {
	IsAdmin(actor common.Address) bool
}

// EventSink receives domain events emitted by the engine.
type EventSink interface {
	AppendEvents(events []model.RewardEvent) error
}

// Collaborators bundles the external services the engine consumes. Any of
// them may be nil; operations that require a missing collaborator fail.
type Collaborators struct {
	Issuer      TokenIssuer
	Checkpoints CheckpointStore
	Positions   PositionSink
	Access      AccessController
	Events      EventSink
}
