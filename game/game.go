// Package game owns the colony: the agent pool, the pheromone field and the
// tick loop that drives them.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/field"
	"github.com/pthm-cable/trails/systems"
	"github.com/pthm-cable/trails/telemetry"
)

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	rng     *rand.Rand
	rngSeed int64
	dt      float64

	agents    []components.Agent
	field     *field.Field
	landmarks systems.Landmarks
	params    systems.AntParams

	// Periodic passes
	scheduler      *systems.Scheduler
	wallCadence    systems.Cadence
	depositCadence systems.Cadence

	parallel *parallelState

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	deliveries     int // cumulative
	pickups        int // cumulative

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	ledger           *telemetry.Ledger
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats
}

// NewGame creates a colony from cfg. Derived values are recomputed, so cfg
// may be edited in place beforehand. Configuration problems are reported
// here, before any agent is spawned.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		rngSeed:        opts.Seed,
		dt:             cfg.Physics.DT,
		field:          field.New(field.OptionsFromConfig(cfg)),
		landmarks:      systems.LandmarksFromConfig(cfg),
		params:         systems.AntParamsFromConfig(cfg),
		scheduler:      systems.NewScheduler(cfg),
		wallCadence:    systems.NewCadence(cfg.Cadence.WallCheck, 0),
		depositCadence: systems.NewCadence(cfg.Cadence.Deposit, 0),
		parallel:       newParallelState(opts.Workers, opts.Seed),
		stepsPerUpdate: steps,

		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}

	if err := g.openOutputs(opts); err != nil {
		g.closeOutputs()
		return nil, err
	}

	g.spawnColony()

	slog.Info("colony created",
		"ants", len(g.agents),
		"seed", opts.Seed,
		"workers", g.parallel.numWorkers,
		"world_w", cfg.Derived.WorldW,
		"world_h", cfg.Derived.WorldH,
	)
	return g, nil
}

// openOutputs sets up CSV output and the run ledger when enabled.
func (g *Game) openOutputs(opts Options) error {
	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if opts.LedgerPath == "" {
		return nil
	}
	ledger, err := telemetry.OpenLedger(opts.LedgerPath)
	if err != nil {
		return err
	}
	g.ledger = ledger

	cfgYAML, err := g.cfg.MarshalYAMLString()
	if err != nil {
		return err
	}
	runID, err := ledger.StartRun(opts.Seed, cfgYAML)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	slog.Info("ledger run started", "run_id", runID, "path", opts.LedgerPath)
	return nil
}

func (g *Game) closeOutputs() error {
	var errs []error
	if g.outputManager != nil {
		errs = append(errs, g.outputManager.Close())
		g.outputManager = nil
	}
	if g.ledger != nil {
		errs = append(errs, g.ledger.FinishRun(g.tick), g.ledger.Close())
		g.ledger = nil
	}
	return errors.Join(errs...)
}

// Step advances the simulation by one tick. Field maintenance runs first
// and alone; the agent passes then only read the field; deposits are
// applied serially afterwards.
func (g *Game) Step() {
	pc := g.perfCollector
	pc.StartTick()

	pc.StartPhase(telemetry.PhaseMaintenance)
	if r := g.scheduler.Step(g.dt, g.field); r.Pruned {
		g.collector.RecordPruned(r.Removed)
	}

	pc.StartPhase(telemetry.PhaseWalls)
	if g.wallCadence.Advance(g.dt) {
		g.runPass(passWalls)
	}

	pc.StartPhase(telemetry.PhaseAgents)
	g.runPass(passAgents)

	pc.StartPhase(telemetry.PhaseDeposit)
	if g.depositCadence.Advance(g.dt) {
		g.depositPass()
	}

	g.tick++

	pc.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	pc.EndTick()
}

// depositPass lets every agent lay pheromone at its current position.
func (g *Game) depositPass() {
	for i := range g.agents {
		systems.Deposit(&g.agents[i], g.field)
	}
}

// UpdateHeadless runs StepsPerUpdate ticks.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Update runs one frame of an interactive session: StepsPerUpdate ticks
// unless paused.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	if g.paused {
		return
	}
	g.UpdateHeadless()
}

// Close stops the worker pool and flushes all outputs.
func (g *Game) Close() error {
	g.stopParallelWorkers()
	return g.closeOutputs()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) { g.paused = p }

// StepsPerUpdate returns the number of ticks per Update call.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate changes the number of ticks per Update call.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(n, 1)
}

// Deliveries returns the number of completed round trips so far.
func (g *Game) Deliveries() int { return g.deliveries }

// Pickups returns the number of food pickups so far.
func (g *Game) Pickups() int { return g.pickups }

// Landmarks returns the home and food positions.
func (g *Game) Landmarks() systems.Landmarks { return g.landmarks }

// Config returns the configuration the game was built from.
func (g *Game) Config() *config.Config { return g.cfg }

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats { return g.lastStats }

// PerfStats returns timing statistics over the recent ticks.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// FieldStats summarizes both pheromone channels.
func (g *Game) FieldStats() [field.NumChannels]field.ChannelStats { return g.field.Stats() }

// AgentSnapshots copies the renderable state of every agent into dst,
// which is reused when it has capacity.
func (g *Game) AgentSnapshots(dst []components.AgentSnapshot) []components.AgentSnapshot {
	dst = dst[:0]
	for i := range g.agents {
		dst = append(dst, g.agents[i].Snapshot())
	}
	return dst
}

// FieldSnapshot copies the live cells of one channel.
func (g *Game) FieldSnapshot(ch field.Channel) field.ChannelSnapshot {
	return g.field.Snapshot(ch)
}
