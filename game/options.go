package game

import "github.com/pthm-cable/trails/telemetry"

// Options configures a Game beyond the simulation config.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string  // bookmark snapshots, empty = disabled
	OutputDir      string  // CSV output, empty = disabled
	LedgerPath     string  // SQLite run ledger, empty = disabled
	Headless       bool
	StepsPerUpdate int // ticks per Update/UpdateHeadless call
	Workers        int // agent pass workers, 0 = GOMAXPROCS

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// DefaultOptions returns options for an interactive run.
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		StepsPerUpdate: 1,
	}
}
