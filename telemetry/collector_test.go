package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/trails/field"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1, 0.25)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("expected 4 ticks per window, got %d", c.WindowDurationTicks())
	}
	if c.ShouldFlush(3) {
		t.Error("flushed before the window elapsed")
	}
	if !c.ShouldFlush(4) {
		t.Error("expected flush at window end")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 0.5)
	c.RecordPickups(3)
	c.RecordDelivery(20)
	c.RecordDelivery(40)
	c.RecordExploreSteps(11)
	c.RecordDroppedSteps(1)
	c.RecordWallCorrections(5)
	c.RecordPruned(7)

	var sample ColonySample
	sample.SeekingFood = 8
	sample.SeekingHome = 2
	sample.Channels[field.ToFood] = field.ChannelStats{LiveCells: 4, Total: 10, CacheHits: 3, CacheMisses: 1}
	sample.Channels[field.ToHome] = field.ChannelStats{CacheHits: 3, CacheMisses: 1}

	s := c.Flush(20, sample)

	if s.WindowStartTick != 0 || s.WindowEndTick != 20 || s.SimTimeSec != 10 {
		t.Errorf("unexpected window bounds %d..%d at %v", s.WindowStartTick, s.WindowEndTick, s.SimTimeSec)
	}
	if s.Pickups != 3 || s.Deliveries != 2 {
		t.Errorf("expected 3 pickups and 2 deliveries, got %d and %d", s.Pickups, s.Deliveries)
	}
	// Trips of 20 and 40 ticks at dt 0.5
	if s.TripMean != 15 || s.TripP90 != 20 {
		t.Errorf("expected trip mean 15s and p90 20s, got %v and %v", s.TripMean, s.TripP90)
	}
	if s.ToFoodCells != 4 || s.ToFoodMeanStrength != 2.5 || s.ToHomeMeanStrength != 0 {
		t.Errorf("unexpected channel stats %+v", s)
	}
	if math.Abs(s.CacheHitRate-0.75) > 1e-9 {
		t.Errorf("expected hit rate 0.75, got %v", s.CacheHitRate)
	}
	if s.ExploreSteps != 11 || s.DroppedSteps != 1 || s.WallCorrections != 5 || s.PrunedCells != 7 {
		t.Errorf("unexpected controller counts %+v", s)
	}

	// Counters reset; cache rate only covers the new window
	sample.Channels[field.ToFood].CacheMisses = 3
	next := c.Flush(40, sample)
	if next.WindowStartTick != 20 || next.Deliveries != 0 || next.TripMean != 0 {
		t.Errorf("expected a fresh window, got %+v", next)
	}
	if next.CacheHitRate != 0 {
		t.Errorf("expected hit rate 0 for a window of misses, got %v", next.CacheHitRate)
	}
}
