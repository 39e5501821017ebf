package systems

import "math"

// Cadence fires at a fixed interval of simulated time. Every periodic pass
// owns its own Cadence so passes stay independent of each other.
type Cadence struct {
	Interval float64
	elapsed  float64
}

// NewCadence creates a cadence with the given interval. phase in [0, 1)
// pre-advances the timer by that fraction of the interval, so cadences
// with equal intervals can be kept out of step.
func NewCadence(interval, phase float64) Cadence {
	phase = math.Max(0, math.Min(phase, 1))
	return Cadence{Interval: interval, elapsed: phase * interval}
}

// Advance adds dt and reports whether the interval elapsed. At most one
// firing is reported per call; any backlog beyond one interval is dropped.
func (c *Cadence) Advance(dt float64) bool {
	if c.Interval <= 0 {
		return true
	}
	c.elapsed += dt
	if c.elapsed < c.Interval {
		return false
	}
	c.elapsed = math.Mod(c.elapsed, c.Interval)
	return true
}

// Reset restarts the timer.
func (c *Cadence) Reset() {
	c.elapsed = 0
}
