package game

import (
	"log/slog"

	"github.com/pthm-cable/trails/field"
	"github.com/pthm-cable/trails/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	seekingFood, seekingHome := g.goalCounts()
	stats := g.collector.Flush(g.tick, telemetry.ColonySample{
		SeekingFood: seekingFood,
		SeekingHome: seekingHome,
		Channels:    g.field.Stats(),
	})
	g.lastStats = stats
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	if g.ledger != nil {
		if err := g.ledger.RecordWindow(stats); err != nil {
			slog.Error("failed to record window", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if g.ledger != nil {
			if err := g.ledger.RecordBookmark(bm); err != nil {
				slog.Error("failed to record bookmark", "error", err)
			}
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.rngSeed,
		WorldWidth:  g.cfg.Derived.WorldW,
		WorldHeight: g.cfg.Derived.WorldH,
		Home:        [2]float64{g.landmarks.Home.X, g.landmarks.Home.Y},
		Food:        [2]float64{g.landmarks.Food.X, g.landmarks.Food.Y},
		Tick:        g.tick,
		Agents:      telemetry.NewAgentStates(g.AgentSnapshots(nil)),
		Bookmark:    bookmark,
	}
	for ch := field.Channel(0); ch < field.NumChannels; ch++ {
		s.Channels = append(s.Channels, telemetry.NewChannelState(g.field.Snapshot(ch)))
	}
	return s
}
