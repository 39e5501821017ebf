package main

import (
	"github.com/pthm-cable/trails/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "decay_rate", Path: "pheromone.decay_rate", Min: 0.05, Max: 2.0, Default: 0.5},
			{Name: "deposit_strength", Path: "ant.deposit_strength", Min: 1.0, Max: 15.0, Default: 8.0},
			{Name: "scan_radius", Path: "pheromone.scan_radius", Min: 10.0, Max: 80.0, Default: 30.0},
			{Name: "max_strength", Path: "pheromone.max_strength", Min: 5.0, Max: 40.0, Default: 15.0},
			{Name: "wander_strength", Path: "ant.wander_strength", Min: 0.0, Max: 1.0, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Pheromone.DecayRate = clamped[0]
	cfg.Ant.DepositStrength = clamped[1]
	cfg.Pheromone.ScanRadius = clamped[2]
	cfg.Pheromone.MaxStrength = clamped[3]
	cfg.Ant.WanderStrength = clamped[4]
	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Pheromone.DecayRate,
		cfg.Ant.DepositStrength,
		cfg.Pheromone.ScanRadius,
		cfg.Pheromone.MaxStrength,
		cfg.Ant.WanderStrength,
	}
}
