package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/game"
	"github.com/pthm-cable/trails/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastRate    float64 // deliveries per simulated minute from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastRate returns the delivery rate from the most recent evaluation.
func (fe *FitnessEvaluator) LastRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// runResult holds the results from a single simulation run.
type runResult struct {
	deliveries  int
	ticks       int32
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
	err         error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Each seed runs in its own goroutine with a serial agent pass, so a
// given seed always produces the same result.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	rates := make([]float64, 0, len(results))
	qualities := make([]float64, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			slog.Warn("evaluation run failed", "error", r.err)
			rates = append(rates, 0)
			qualities = append(qualities, 0)
			continue
		}
		rates = append(rates, deliveryRate(r.deliveries, r.ticks, fe.baseConfig.Physics.DT))
		qualities = append(qualities, computeQuality(r.windowStats))
	}

	rate := stat.Mean(rates, nil)
	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.lastRate = rate
	fe.mu.Unlock()

	return computeFitness(rate, quality)
}

// runSimulation executes a single headless simulation run of maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var result runResult
	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Workers:        1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Close()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	result.deliveries = g.Deliveries()
	result.ticks = g.Tick()
	return result
}

// copyConfig returns a copy of the base config. Config holds no
// references, so a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// deliveryRate converts a delivery count to deliveries per simulated minute.
func deliveryRate(deliveries int, ticks int32, dt float64) float64 {
	minutes := float64(ticks) * dt / 60
	if minutes <= 0 {
		return 0
	}
	return float64(deliveries) / minutes
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(rate × (1.0 + 0.2 × quality))
// Throughput dominates; quality adds up to 20% to separate configs with
// similar delivery rates.
func computeFitness(rate, quality float64) float64 {
	return -(rate * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.5
	qualityWeightTrips     = 0.5

	qualityWarmupWindows = 2 // skip first N windows while trails form
)

// computeQuality scores trail quality in [0, 1] from window stats:
// steady delivery counts across windows and a tight trip time spread.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	counts := make([]float64, 0, len(valid))
	var spreadSum float64
	var spreadCount int
	for _, w := range valid {
		counts = append(counts, float64(w.Deliveries))
		if w.Deliveries > 0 && w.TripP90 > 0 {
			// 1 when every trip takes the same time, toward 0 as the tail grows
			spreadSum += w.TripP50 / w.TripP90
			spreadCount++
		}
	}

	stabilityScore := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stabilityScore = math.Exp(-c * c)
	}

	tripScore := 0.0
	if spreadCount > 0 {
		tripScore = spreadSum / float64(spreadCount)
	}

	return clamp01(qualityWeightStability*stabilityScore + qualityWeightTrips*tripScore)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
