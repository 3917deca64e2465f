package rewards

import "errors"

// Error kinds surfaced by the engine. Every failure wraps exactly one of
// these so callers can distinguish the cause with errors.Is.
var (
	// ErrConfiguration marks invalid program parameters: bad share split,
	// non-future end time, zero rate, or a degenerate reserve set.
	ErrConfiguration = errors.New("rewards: invalid program configuration")

	// ErrAccessDenied marks an administrative call from a non-admin actor.
	ErrAccessDenied = errors.New("rewards: access denied")

	// ErrNotParticipating marks an operation that requires a live program.
	ErrNotParticipating = errors.New("rewards: pool is not participating")

	// ErrNoRewards marks a claim with nothing payable.
	ErrNoRewards = errors.New("rewards: no claimable rewards")

	// ErrDuplicateInput marks batch input with repeated ids where unique
	// ids are required.
	ErrDuplicateInput = errors.New("rewards: duplicate input")

	// ErrArithmetic marks an accounting invariant violation. It is fatal:
	// state reached a shape the engine cannot have produced itself.
	ErrArithmetic = errors.New("rewards: arithmetic invariant violated")
)
