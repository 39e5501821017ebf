package systems

import (
	"log/slog"

	"github.com/pthm-cable/trails/config"
)

// Maintainable is the field surface driven by the scheduler.
// *field.Field satisfies it.
type Maintainable interface {
	Decay(rate float64)
	Prune() int
	Reindex()
	InvalidateSteerCache()
}

// MaintenanceReport lists the passes that ran during one Step.
type MaintenanceReport struct {
	Decayed     bool
	Pruned      bool
	Reindexed   bool
	Invalidated bool
	Removed     int // cells dropped by prune
}

// Any reports whether any pass ran.
func (r MaintenanceReport) Any() bool {
	return r.Decayed || r.Pruned || r.Reindexed || r.Invalidated
}

// LogValue implements slog.LogValuer for structured logging.
func (r MaintenanceReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("decay", r.Decayed),
		slog.Bool("prune", r.Pruned),
		slog.Bool("reindex", r.Reindexed),
		slog.Bool("invalidate", r.Invalidated),
		slog.Int("removed", r.Removed),
	)
}

// Scheduler drives decay, prune, reindex and steer-cache invalidation,
// each from its own timer.
type Scheduler struct {
	decay      Cadence
	prune      Cadence
	reindex    Cadence
	invalidate Cadence
	decayRate  float64
}

// NewScheduler builds a scheduler from the cadence settings. Timers start
// at staggered phases so equal intervals do not fire on the same tick.
func NewScheduler(cfg *config.Config) *Scheduler {
	cd := cfg.Cadence
	return &Scheduler{
		decay:      NewCadence(cd.Decay, 0),
		prune:      NewCadence(cd.Prune, 0.5),
		reindex:    NewCadence(cd.Reindex, 0.25),
		invalidate: NewCadence(cd.CacheInvalidate, 0.75),
		decayRate:  cfg.Pheromone.DecayRate,
	}
}

// SetDecayRate changes the amount removed per decay pass.
func (s *Scheduler) SetDecayRate(rate float64) {
	s.decayRate = rate
}

// Step advances every timer by dt and runs the passes that are due, in the
// order decay, prune, reindex, invalidate. It must not run concurrently
// with agent queries or deposits.
func (s *Scheduler) Step(dt float64, f Maintainable) MaintenanceReport {
	var r MaintenanceReport

	if s.decay.Advance(dt) {
		f.Decay(s.decayRate)
		r.Decayed = true
	}
	if s.prune.Advance(dt) {
		r.Removed = f.Prune()
		r.Pruned = true
	}
	if s.reindex.Advance(dt) {
		f.Reindex()
		r.Reindexed = true
	}
	if s.invalidate.Advance(dt) {
		f.InvalidateSteerCache()
		r.Invalidated = true
	}

	if r.Any() {
		slog.Debug("field maintenance", "report", r)
	}
	return r
}
