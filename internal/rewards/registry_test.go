package rewards

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func regAddr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func validReserves() [2]common.Address {
	return [2]common.Address{regAddr(0xA1), regAddr(0xA2)}
}

func TestRegistryAddValidation(t *testing.T) {
	now := uint64(1000)
	pool := regAddr(0x50)
	rate := big.NewInt(10)

	cases := []struct {
		name     string
		reserves [2]common.Address
		shares   [2]uint32
		endTime  uint64
		rate     *big.Int
	}{
		{"shares do not sum", validReserves(), [2]uint32{500_000, 400_000}, 2000, rate},
		{"shares wrap uint32", validReserves(), [2]uint32{3_000_000_000, 1_295_967_296}, 2000, rate},
		{"end not in future", validReserves(), [2]uint32{500_000, 500_000}, 1000, rate},
		{"zero rate", validReserves(), [2]uint32{500_000, 500_000}, 2000, big.NewInt(0)},
		{"nil rate", validReserves(), [2]uint32{500_000, 500_000}, 2000, nil},
		{"zero reserve", [2]common.Address{{}, regAddr(0xA2)}, [2]uint32{500_000, 500_000}, 2000, rate},
		{"identical reserves", [2]common.Address{regAddr(0xA1), regAddr(0xA1)}, [2]uint32{500_000, 500_000}, 2000, rate},
	}

	for _, tc := range cases {
		r := NewProgramRegistry()
		if _, err := r.Add(pool, tc.reserves, tc.shares, tc.endTime, tc.rate, now); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: got %v, want ErrConfiguration", tc.name, err)
		}
	}
}

func TestRegistryAddAndParticipation(t *testing.T) {
	r := NewProgramRegistry()
	pool := regAddr(0x50)

	prog, err := r.Add(pool, validReserves(), [2]uint32{700_000, 300_000}, 2000, big.NewInt(10), 1000)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if prog.StartTime != 1000 {
		t.Fatalf("start time: got %d, want 1000", prog.StartTime)
	}

	if !r.IsParticipating(pool, 1500) {
		t.Fatalf("expected participating before end")
	}
	if r.IsParticipating(pool, 2000) {
		t.Fatalf("expected lapsed at end time")
	}
	if !r.IsReserveParticipating(pool, regAddr(0xA1), 1500) {
		t.Fatalf("expected reserve participating")
	}
	if r.IsReserveParticipating(pool, regAddr(0xB1), 1500) {
		t.Fatalf("unexpected participation for foreign reserve")
	}

	// Duplicate while live is rejected; a lapsed program may be replaced.
	if _, err := r.Add(pool, validReserves(), [2]uint32{500_000, 500_000}, 3000, big.NewInt(1), 1500); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("duplicate add: got %v, want ErrConfiguration", err)
	}
	if _, err := r.Add(pool, validReserves(), [2]uint32{500_000, 500_000}, 3000, big.NewInt(1), 2100); err != nil {
		t.Fatalf("re-add after lapse: %v", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewProgramRegistry()
	pool := regAddr(0x50)

	if _, err := r.Remove(pool, 1000); !errors.Is(err, ErrNotParticipating) {
		t.Fatalf("remove unknown: got %v, want ErrNotParticipating", err)
	}

	if _, err := r.Add(pool, validReserves(), [2]uint32{500_000, 500_000}, 2000, big.NewInt(10), 1000); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Remove(pool, 2500); !errors.Is(err, ErrNotParticipating) {
		t.Fatalf("remove lapsed: got %v, want ErrNotParticipating", err)
	}
	if _, err := r.Remove(pool, 1500); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := r.Get(pool); ok {
		t.Fatalf("program still present after removal")
	}
}

func TestRegistryExtend(t *testing.T) {
	r := NewProgramRegistry()
	pool := regAddr(0x50)

	if _, err := r.Extend(pool, 3000, 1000); !errors.Is(err, ErrNotParticipating) {
		t.Fatalf("extend unknown: got %v, want ErrNotParticipating", err)
	}

	if _, err := r.Add(pool, validReserves(), [2]uint32{500_000, 500_000}, 2000, big.NewInt(10), 1000); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Extend(pool, 2000, 1500); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("extend not forward: got %v, want ErrConfiguration", err)
	}
	if _, err := r.Extend(pool, 5000, 1500); err != nil {
		t.Fatalf("extend: %v", err)
	}
	prog, _ := r.Get(pool)
	if prog.EndTime != 5000 {
		t.Fatalf("end time: got %d, want 5000", prog.EndTime)
	}
	if _, err := r.Extend(pool, 9000, 6000); !errors.Is(err, ErrNotParticipating) {
		t.Fatalf("extend after lapse: got %v, want ErrNotParticipating", err)
	}
}
