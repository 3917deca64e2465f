package rewards

import (
	"fmt"
	"math/big"

	"liquidityRewards/internal/model"
)

// rewardRateFactor is the fixed-point scale of the reward-per-token
// accumulator. High enough that per-second settlement of large stakes does
// not truncate to zero.
var rewardRateFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var ppm = big.NewInt(int64(model.PPMResolution))

// settledRewardPerToken computes the accumulator value for one reserve of a
// program advanced to now, without mutating anything. It returns the new
// accumulator and the settlement time to record as LastUpdateTime.
//
// Accrual never passes the program's end time, and intervals with zero
// total stake earn nothing: the accumulator still advances over them so the
// skipped reward is not granted retroactively once stake arrives.
func settledRewardPerToken(prog *model.PoolProgram, st *model.PoolRewardsState, reserveIdx int, now uint64) (*big.Int, uint64) {
	rpt := new(big.Int).Set(st.RewardPerToken)
	if prog == nil {
		return rpt, st.LastUpdateTime
	}

	effectiveEnd := now
	if prog.EndTime < effectiveEnd {
		effectiveEnd = prog.EndTime
	}
	settleTime := st.LastUpdateTime
	if effectiveEnd > settleTime {
		settleTime = effectiveEnd
	}

	from := st.LastUpdateTime
	if prog.StartTime > from {
		from = prog.StartTime
	}
	if effectiveEnd <= from || st.TotalStaked.Sign() <= 0 {
		return rpt, settleTime
	}

	// elapsed * rate * share / PPM / totalStaked, at accumulator scale.
	delta := new(big.Int).SetUint64(effectiveEnd - from)
	delta.Mul(delta, prog.RewardRate)
	delta.Mul(delta, rewardRateFactor)
	delta.Mul(delta, big.NewInt(int64(prog.RewardShares[reserveIdx])))
	delta.Div(delta, ppm)
	delta.Div(delta, st.TotalStaked)

	return rpt.Add(rpt, delta), settleTime
}

// earnedSince converts an accumulator advance into base rewards for a
// provider's staked amount. Fails when the accumulator appears to have run
// backwards, which settlement can never produce.
func earnedSince(ps *model.ProviderRewardsState, rewardPerToken *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(rewardPerToken, ps.RewardPerTokenSnapshot)
	if diff.Sign() < 0 {
		return nil, fmt.Errorf("%w: reward per token decreased for provider %s pool %s",
			ErrArithmetic, ps.Provider.Hex(), ps.Pool.Hex())
	}
	earned := new(big.Int).Mul(ps.StakedAmount, diff)
	return earned.Div(earned, rewardRateFactor), nil
}

// applyMultiplier scales a base amount by a PPM multiplier, rounding down.
func applyMultiplier(amount *big.Int, multiplier uint32) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(multiplier)))
	return out.Div(out, ppm)
}

// unapplyMultiplier converts a multiplied amount back to base units,
// rounding up so a partial claim can never leave more payable behind than
// was actually left unclaimed.
func unapplyMultiplier(amount *big.Int, multiplier uint32) *big.Int {
	num := new(big.Int).Mul(amount, ppm)
	den := big.NewInt(int64(multiplier))
	out, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() > 0 {
		out.Add(out, big.NewInt(1))
	}
	return out
}
