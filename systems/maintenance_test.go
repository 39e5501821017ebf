package systems

import (
	"testing"

	"github.com/pthm-cable/trails/config"
)

type recordingField struct {
	calls []string
	rates []float64
}

func (f *recordingField) Decay(rate float64) {
	f.calls = append(f.calls, "decay")
	f.rates = append(f.rates, rate)
}

func (f *recordingField) Prune() int {
	f.calls = append(f.calls, "prune")
	return 3
}

func (f *recordingField) Reindex()              { f.calls = append(f.calls, "reindex") }
func (f *recordingField) InvalidateSteerCache() { f.calls = append(f.calls, "invalidate") }

func (f *recordingField) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestSchedulerOrder(t *testing.T) {
	s := &Scheduler{
		decay:      NewCadence(1, 0),
		prune:      NewCadence(1, 0),
		reindex:    NewCadence(1, 0),
		invalidate: NewCadence(1, 0),
		decayRate:  0.5,
	}
	f := &recordingField{}

	r := s.Step(1, f)

	want := []string{"decay", "prune", "reindex", "invalidate"}
	if len(f.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, f.calls)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Errorf("pass %d: expected %s, got %s", i, want[i], f.calls[i])
		}
	}
	if !r.Decayed || !r.Pruned || !r.Reindexed || !r.Invalidated || r.Removed != 3 {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestSchedulerIndependentCadences(t *testing.T) {
	cfg := config.Default()
	cfg.Cadence.Decay = 0.25
	cfg.Cadence.Prune = 1
	cfg.Cadence.Reindex = 0.5
	cfg.Cadence.CacheInvalidate = 0.375
	cfg.Pheromone.DecayRate = 2

	s := NewScheduler(cfg)
	f := &recordingField{}
	for i := 0; i < 8; i++ {
		s.Step(0.125, f)
	}

	tests := []struct {
		pass string
		want int
	}{
		{"decay", 4},
		{"prune", 1},
		{"reindex", 2},
		{"invalidate", 3},
	}
	for _, tt := range tests {
		if got := f.count(tt.pass); got != tt.want {
			t.Errorf("%s: expected %d runs in one second, got %d", tt.pass, tt.want, got)
		}
	}
	for _, rate := range f.rates {
		if rate != 2 {
			t.Errorf("expected decay rate 2, got %g", rate)
		}
	}
}

func TestSchedulerSetDecayRate(t *testing.T) {
	s := &Scheduler{decay: NewCadence(1, 0), prune: NewCadence(10, 0), reindex: NewCadence(10, 0), invalidate: NewCadence(10, 0)}
	s.SetDecayRate(0.75)
	f := &recordingField{}

	r := s.Step(1, f)
	if !r.Decayed || r.Pruned || r.Reindexed || r.Invalidated {
		t.Errorf("expected only decay, got %+v", r)
	}
	if len(f.rates) != 1 || f.rates[0] != 0.75 {
		t.Errorf("expected decay at 0.75, got %v", f.rates)
	}
}

func TestSchedulerIdleStep(t *testing.T) {
	s := NewScheduler(config.Default())
	f := &recordingField{}
	if r := s.Step(0, f); r.Any() {
		t.Errorf("expected nothing due at dt=0, got %+v", r)
	}
}
