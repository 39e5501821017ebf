package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/telemetry"
)

func TestParamVectorNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: expected %g after roundtrip, got %g", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: config default %g, spec default %g", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{-1, 100, 30, 15, 0.3})

	if cfg.Pheromone.DecayRate != pv.Specs[0].Min {
		t.Errorf("expected decay_rate clamped to %g, got %g", pv.Specs[0].Min, cfg.Pheromone.DecayRate)
	}
	if cfg.Ant.DepositStrength != pv.Specs[1].Max {
		t.Errorf("expected deposit_strength clamped to %g, got %g", pv.Specs[1].Max, cfg.Ant.DepositStrength)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected applied config to validate, got %v", err)
	}
}

func TestDeliveryRate(t *testing.T) {
	tests := []struct {
		name       string
		deliveries int
		ticks      int32
		want       float64
	}{
		{"one minute", 30, 3600, 30},
		{"half minute", 30, 1800, 60},
		{"no ticks", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deliveryRate(tt.deliveries, tt.ticks, 1.0/60)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestComputeQuality(t *testing.T) {
	steady := []telemetry.WindowStats{
		{}, {},
		{Deliveries: 10, TripP50: 20, TripP90: 20},
		{Deliveries: 10, TripP50: 20, TripP90: 20},
		{Deliveries: 10, TripP50: 20, TripP90: 20},
	}
	if q := computeQuality(steady); math.Abs(q-1) > 1e-9 {
		t.Errorf("expected quality 1 for steady uniform trips, got %g", q)
	}

	if q := computeQuality(steady[:2]); q != 0 {
		t.Errorf("expected zero quality during warmup, got %g", q)
	}

	uneven := []telemetry.WindowStats{
		{}, {},
		{Deliveries: 1, TripP50: 10, TripP90: 40},
		{Deliveries: 20, TripP50: 10, TripP90: 40},
	}
	if q := computeQuality(uneven); q <= 0 || q >= computeQuality(steady) {
		t.Errorf("expected uneven quality in (0, steady), got %g", q)
	}
}

func TestComputeFitnessPrefersThroughput(t *testing.T) {
	if computeFitness(10, 0) >= computeFitness(5, 1) {
		t.Error("expected higher delivery rate to dominate quality")
	}
	if computeFitness(10, 1) >= computeFitness(10, 0) {
		t.Error("expected quality to break ties")
	}
}
