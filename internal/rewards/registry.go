package rewards

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRewards/internal/model"
)

// ProgramRegistry holds the pool programs currently known to the engine,
// keyed by pool. Programs lapse implicitly when their end time passes;
// explicit removal deletes the record while accrued reward state survives
// elsewhere.
type ProgramRegistry struct {
	programs map[common.Address]*model.PoolProgram
}

func NewProgramRegistry() *ProgramRegistry {
	return &ProgramRegistry{programs: make(map[common.Address]*model.PoolProgram)}
}

// Add registers a program starting at now. The share split must sum to full
// PPM resolution, the end time must be in the future, the rate positive,
// the reserves distinct and non-zero, and the pool must not already be
// participating.
func (r *ProgramRegistry) Add(pool common.Address, reserves [2]common.Address, shares [2]uint32, endTime uint64, rate *big.Int, now uint64) (*model.PoolProgram, error) {
	// Summed in uint64 so a share pair wrapping uint32 cannot pass.
	if uint64(shares[0])+uint64(shares[1]) != uint64(model.PPMResolution) {
		return nil, fmt.Errorf("%w: reward shares %d+%d do not sum to %d", ErrConfiguration, shares[0], shares[1], model.PPMResolution)
	}
	if endTime <= now {
		return nil, fmt.Errorf("%w: end time %d is not in the future", ErrConfiguration, endTime)
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reward rate must be positive", ErrConfiguration)
	}
	if reserves[0] == (common.Address{}) || reserves[1] == (common.Address{}) {
		return nil, fmt.Errorf("%w: reserve token is zero", ErrConfiguration)
	}
	if reserves[0] == reserves[1] {
		return nil, fmt.Errorf("%w: reserve tokens are identical", ErrConfiguration)
	}
	if existing, ok := r.programs[pool]; ok && existing.Participating(now) {
		return nil, fmt.Errorf("%w: pool %s is already participating", ErrConfiguration, pool.Hex())
	}

	prog := &model.PoolProgram{
		Pool:          pool,
		ReserveTokens: reserves,
		RewardShares:  shares,
		StartTime:     now,
		EndTime:       endTime,
		RewardRate:    new(big.Int).Set(rate),
	}
	r.programs[pool] = prog
	return prog, nil
}

// Remove deletes a program. Allowed only while the pool participates.
func (r *ProgramRegistry) Remove(pool common.Address, now uint64) (*model.PoolProgram, error) {
	prog, ok := r.programs[pool]
	if !ok || !prog.Participating(now) {
		return nil, fmt.Errorf("%w: pool %s", ErrNotParticipating, pool.Hex())
	}
	delete(r.programs, pool)
	return prog, nil
}

// Extend moves a participating program's end time strictly forward.
func (r *ProgramRegistry) Extend(pool common.Address, newEndTime, now uint64) (*model.PoolProgram, error) {
	prog, ok := r.programs[pool]
	if !ok || !prog.Participating(now) {
		return nil, fmt.Errorf("%w: pool %s", ErrNotParticipating, pool.Hex())
	}
	if newEndTime <= prog.EndTime {
		return nil, fmt.Errorf("%w: new end time %d does not extend %d", ErrConfiguration, newEndTime, prog.EndTime)
	}
	prog.EndTime = newEndTime
	return prog, nil
}

// Get returns the program for pool, participating or lapsed.
func (r *ProgramRegistry) Get(pool common.Address) (*model.PoolProgram, bool) {
	prog, ok := r.programs[pool]
	return prog, ok
}

// IsParticipating reports whether pool has a live program at now.
func (r *ProgramRegistry) IsParticipating(pool common.Address, now uint64) bool {
	prog, ok := r.programs[pool]
	return ok && prog.Participating(now)
}

// IsReserveParticipating reports whether reserve belongs to a live program
// of pool at now.
func (r *ProgramRegistry) IsReserveParticipating(pool, reserve common.Address, now uint64) bool {
	prog, ok := r.programs[pool]
	if !ok || !prog.Participating(now) {
		return false
	}
	_, ok = prog.ReserveIndex(reserve)
	return ok
}

// Programs returns all registered programs ordered by pool address.
func (r *ProgramRegistry) Programs() []*model.PoolProgram {
	out := make([]*model.PoolProgram, 0, len(r.programs))
	for _, prog := range r.programs {
		out = append(out, prog)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Pool.Bytes(), out[j].Pool.Bytes()) < 0
	})
	return out
}
