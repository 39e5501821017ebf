package telemetry

import (
	"math"

	"github.com/pthm-cable/trails/field"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	pickups         int
	deliveries      int
	exploreSteps    int
	droppedSteps    int
	wallCorrections int
	prunedCells     int
	tripSec         []float64

	// Cumulative cache counters at the previous flush
	lastHits, lastMisses int64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordPickups records agents that reached food.
func (c *Collector) RecordPickups(n int) {
	c.pickups += n
}

// RecordDelivery records an agent reaching home after a round trip of
// tripTicks ticks.
func (c *Collector) RecordDelivery(tripTicks int32) {
	c.deliveries++
	c.tripSec = append(c.tripSec, float64(tripTicks)*c.dt)
}

// RecordExploreSteps records steps where no target was found.
func (c *Collector) RecordExploreSteps(n int) {
	c.exploreSteps += n
}

// RecordDroppedSteps records integrations skipped on non-finite values.
func (c *Collector) RecordDroppedSteps(n int) {
	c.droppedSteps += n
}

// RecordWallCorrections records wall avoidance forces applied.
func (c *Collector) RecordWallCorrections(n int) {
	c.wallCorrections += n
}

// RecordPruned records cells dropped by a prune pass.
func (c *Collector) RecordPruned(n int) {
	c.prunedCells += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// ColonySample is the state sampled at window end.
type ColonySample struct {
	SeekingFood int
	SeekingHome int
	Channels    [field.NumChannels]field.ChannelStats
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample ColonySample) WindowStats {
	tripMean, tripP50, tripP90 := ComputeTripStats(c.tripSec)

	// Cache counters are cumulative; report the rate over this window only
	var hits, misses int64
	for _, ch := range sample.Channels {
		hits += ch.CacheHits
		misses += ch.CacheMisses
	}
	var hitRate float64
	if dh, dm := hits-c.lastHits, misses-c.lastMisses; dh+dm > 0 {
		hitRate = float64(dh) / float64(dh+dm)
	}
	c.lastHits, c.lastMisses = hits, misses

	toFood := sample.Channels[field.ToFood]
	toHome := sample.Channels[field.ToHome]

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		SeekingFood: sample.SeekingFood,
		SeekingHome: sample.SeekingHome,

		Pickups:    c.pickups,
		Deliveries: c.deliveries,

		TripMean: tripMean,
		TripP50:  tripP50,
		TripP90:  tripP90,

		ToFoodCells:        toFood.LiveCells,
		ToHomeCells:        toHome.LiveCells,
		ToFoodMeanStrength: meanStrength(toFood),
		ToHomeMeanStrength: meanStrength(toHome),
		CacheHitRate:       hitRate,
		PrunedCells:        c.prunedCells,

		ExploreSteps:    c.exploreSteps,
		DroppedSteps:    c.droppedSteps,
		WallCorrections: c.wallCorrections,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.pickups = 0
	c.deliveries = 0
	c.exploreSteps = 0
	c.droppedSteps = 0
	c.wallCorrections = 0
	c.prunedCells = 0
	c.tripSec = c.tripSec[:0]

	return stats
}

func meanStrength(s field.ChannelStats) float64 {
	if s.LiveCells == 0 {
		return 0
	}
	return s.Total / float64(s.LiveCells)
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
