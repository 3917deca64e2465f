package rewards

import "time"

// Clock supplies the current unix time in seconds. Production wiring uses
// WallClock; tests and replay inject a ManualClock.
type Clock interface {
	Now() uint64
}

// WallClock reads the system clock.
type WallClock struct{}

func (WallClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock. It never moves backwards.
type ManualClock struct {
	ts uint64
}

func NewManualClock(ts uint64) *ManualClock {
	return &ManualClock{ts: ts}
}

func (c *ManualClock) Now() uint64 {
	return c.ts
}

// Set advances the clock to ts; earlier values are ignored.
func (c *ManualClock) Set(ts uint64) {
	if ts > c.ts {
		c.ts = ts
	}
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) {
	c.ts += d
}
