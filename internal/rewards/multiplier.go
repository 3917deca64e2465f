package rewards

import "liquidityRewards/internal/model"

const (
	secondsPerWeek uint64 = 7 * 24 * 60 * 60

	multiplierWeekStep uint32 = 250_000
	multiplierMaxWeeks uint64 = 4
)

// StakingMultiplier maps a continuous staking duration to a PPM bonus
// multiplier: 1.00x in the first week, +0.25x per completed week, capped at
// 2.00x. It is evaluated at every payable computation and never stored, so
// a newly reached tier applies retroactively to the whole fresh balance.
func StakingMultiplier(duration uint64) uint32 {
	weeks := duration / secondsPerWeek
	if weeks > multiplierMaxWeeks {
		weeks = multiplierMaxWeeks
	}
	return model.PPMResolution + uint32(weeks)*multiplierWeekStep
}

// currentMultiplier evaluates the multiplier in force for a position's
// fresh rewards at now. Continuous staking is measured from the latest of
// the position's effective staking time and the provider's last claim. An
// external full-removal checkpoint past that anchor does not shrink the
// bonus already earned: the value stays pinned at the multiplier reached by
// the checkpoint instant until settlement folds the balance into debt and
// re-anchors the position, after which the duration runs from the
// checkpoint.
func currentMultiplier(effectiveStakingTime, checkpoint, lastClaim, now uint64) uint32 {
	anchor := effectiveStakingTime
	if lastClaim > anchor {
		anchor = lastClaim
	}
	if checkpoint > anchor && checkpoint <= now {
		return StakingMultiplier(checkpoint - anchor)
	}
	if checkpoint > anchor {
		anchor = checkpoint
	}
	var duration uint64
	if now > anchor {
		duration = now - anchor
	}
	return StakingMultiplier(duration)
}
