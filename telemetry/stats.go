package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-" db:"window_start"`
	WindowEndTick   int32   `csv:"window_end" db:"window_end"`
	SimTimeSec      float64 `csv:"sim_time" db:"sim_time"`

	// Agent counts at window end
	SeekingFood int `csv:"seeking_food" db:"seeking_food"`
	SeekingHome int `csv:"seeking_home" db:"seeking_home"`

	// Goal transitions during window
	Pickups    int `csv:"pickups" db:"pickups"`
	Deliveries int `csv:"deliveries" db:"deliveries"`

	// Round-trip duration between deliveries, in seconds
	TripMean float64 `csv:"trip_mean" db:"trip_mean"`
	TripP50  float64 `csv:"trip_p50" db:"trip_p50"`
	TripP90  float64 `csv:"trip_p90" db:"trip_p90"`

	// Field state (sampled at window end)
	ToFoodCells        int     `csv:"to_food_cells" db:"to_food_cells"`
	ToHomeCells        int     `csv:"to_home_cells" db:"to_home_cells"`
	ToFoodMeanStrength float64 `csv:"to_food_mean_strength" db:"to_food_mean_strength"`
	ToHomeMeanStrength float64 `csv:"to_home_mean_strength" db:"to_home_mean_strength"`
	CacheHitRate       float64 `csv:"cache_hit_rate" db:"cache_hit_rate"`
	PrunedCells        int     `csv:"pruned_cells" db:"pruned_cells"`

	// Controller outcomes during window
	ExploreSteps    int `csv:"explore_steps" db:"explore_steps"`
	DroppedSteps    int `csv:"dropped_steps" db:"dropped_steps"`
	WallCorrections int `csv:"wall_corrections" db:"wall_corrections"`
}

// ComputeTripStats calculates mean and percentiles from trip durations.
func ComputeTripStats(values []float64) (mean, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("seeking_food", s.SeekingFood),
		slog.Int("seeking_home", s.SeekingHome),
		slog.Int("pickups", s.Pickups),
		slog.Int("deliveries", s.Deliveries),
		slog.Float64("trip_mean", s.TripMean),
		slog.Float64("trip_p50", s.TripP50),
		slog.Float64("trip_p90", s.TripP90),
		slog.Int("to_food_cells", s.ToFoodCells),
		slog.Int("to_home_cells", s.ToHomeCells),
		slog.Float64("to_food_mean_strength", s.ToFoodMeanStrength),
		slog.Float64("to_home_mean_strength", s.ToHomeMeanStrength),
		slog.Float64("cache_hit_rate", s.CacheHitRate),
		slog.Int("pruned_cells", s.PrunedCells),
		slog.Int("explore_steps", s.ExploreSteps),
		slog.Int("dropped_steps", s.DroppedSteps),
		slog.Int("wall_corrections", s.WallCorrections),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"seeking_food", s.SeekingFood,
		"seeking_home", s.SeekingHome,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"trip_mean", s.TripMean,
		"trip_p50", s.TripP50,
		"trip_p90", s.TripP90,
		"to_food_cells", s.ToFoodCells,
		"to_home_cells", s.ToHomeCells,
		"to_food_mean_strength", s.ToFoodMeanStrength,
		"to_home_mean_strength", s.ToHomeMeanStrength,
		"cache_hit_rate", s.CacheHitRate,
		"pruned_cells", s.PrunedCells,
		"explore_steps", s.ExploreSteps,
		"dropped_steps", s.DroppedSteps,
		"wall_corrections", s.WallCorrections,
	)
}
