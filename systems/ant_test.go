package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/field"
)

// constRand always returns the same value.
type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

// recordingSource records steer queries and answers with a fixed target.
type recordingSource struct {
	calls   []field.Channel
	target  r2.Vec
	present bool
}

func (s *recordingSource) SteerTarget(ch field.Channel, pos r2.Vec) (r2.Vec, bool) {
	s.calls = append(s.calls, ch)
	return s.target, s.present
}

type deposit struct {
	ch     field.Channel
	pos    r2.Vec
	amount float64
}

type recordingDepositor struct {
	deposits []deposit
}

func (d *recordingDepositor) Deposit(ch field.Channel, pos r2.Vec, amount float64) {
	d.deposits = append(d.deposits, deposit{ch, pos, amount})
}

func testParams() AntParams {
	return AntParamsFromConfig(config.Default())
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIntegrateMovesAtSpeed(t *testing.T) {
	a := &components.Agent{Pos: r2.Vec{X: 10, Y: 10}, Vel: r2.Vec{X: 1}, Accel: r2.Vec{Y: 1}}

	if !Integrate(a, 2) {
		t.Fatal("expected step to succeed")
	}

	h := 1 / math.Sqrt2
	if !near(a.Vel.X, h) || !near(a.Vel.Y, h) {
		t.Errorf("expected normalized velocity (%v, %v), got %v", h, h, a.Vel)
	}
	if !near(a.Pos.X, 10+2*h) || !near(a.Pos.Y, 10+2*h) {
		t.Errorf("unexpected position %v", a.Pos)
	}
	if a.Accel != (r2.Vec{}) {
		t.Errorf("expected acceleration reset, got %v", a.Accel)
	}
	if a.Heading < 0 || a.Heading >= 2*math.Pi {
		t.Errorf("expected heading in [0, 2pi), got %v", a.Heading)
	}
}

func TestIntegrateDropsNaN(t *testing.T) {
	a := &components.Agent{Pos: r2.Vec{X: 5, Y: -5}, Vel: r2.Vec{X: 0, Y: 1}, Accel: r2.Vec{X: math.NaN()}, Heading: 1}

	if Integrate(a, 2) {
		t.Error("expected NaN step to be dropped")
	}
	if a.Pos != (r2.Vec{X: 5, Y: -5}) || a.Vel != (r2.Vec{X: 0, Y: 1}) {
		t.Errorf("expected state unchanged, got pos %v vel %v", a.Pos, a.Vel)
	}
	if a.Heading != 1 {
		t.Errorf("expected heading unchanged, got %v", a.Heading)
	}
	if a.Accel != (r2.Vec{}) {
		t.Errorf("expected acceleration reset, got %v", a.Accel)
	}
}

func TestIntegrateDropsDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		agent components.Agent
		speed float64
	}{
		{"zero direction", components.Agent{Vel: r2.Vec{X: 1}, Accel: r2.Vec{X: -1}}, 1},
		{"infinite accel", components.Agent{Vel: r2.Vec{X: 1}, Accel: r2.Vec{Y: math.Inf(1)}}, 1},
		{"position overflow", components.Agent{Pos: r2.Vec{X: math.MaxFloat64}, Vel: r2.Vec{X: 1}}, math.MaxFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.agent
			pos := a.Pos
			if Integrate(&a, tt.speed) {
				t.Fatal("expected step to be dropped")
			}
			if a.Pos != pos {
				t.Errorf("expected position unchanged, got %v", a.Pos)
			}
			if !finite(a.Vel) || !finite(a.Pos) {
				t.Errorf("non-finite state after drop: pos %v vel %v", a.Pos, a.Vel)
			}
		})
	}
}

func TestUpdateGoalTransitions(t *testing.T) {
	p := testParams()
	lm := Landmarks{Home: r2.Vec{X: 100}, Food: r2.Vec{X: -100}}

	a := &components.Agent{Pos: r2.Vec{X: -110}, Vel: r2.Vec{X: 0.6, Y: 0.8}, Goal: components.SeekingFood}
	res := UpdateGoal(a, lm, p, 50)
	if res.Transition != PickedUp || a.Goal != components.SeekingHome {
		t.Fatalf("expected pickup, got %v goal %v", res.Transition, a.Goal)
	}
	if a.Vel != (r2.Vec{X: -0.6, Y: -0.8}) {
		t.Errorf("expected velocity reversed, got %v", a.Vel)
	}

	a.Pos = r2.Vec{X: 95}
	res = UpdateGoal(a, lm, p, 80)
	if res.Transition != Delivered || a.Goal != components.SeekingFood {
		t.Fatalf("expected delivery, got %v goal %v", res.Transition, a.Goal)
	}
	if res.TripTicks != 80 || a.TripStartTick != 80 {
		t.Errorf("expected round trip of 80 ticks, got %d (start %d)", res.TripTicks, a.TripStartTick)
	}

	// Far from both landmarks: nothing happens
	a.Pos = r2.Vec{}
	if res := UpdateGoal(a, lm, p, 90); res.Transition != NoTransition {
		t.Errorf("expected no transition, got %v", res.Transition)
	}
}

func TestResolveTargetFollowsGoalChannel(t *testing.T) {
	p := testParams()
	lm := Landmarks{Home: r2.Vec{X: 500}, Food: r2.Vec{X: -500}}
	src := &recordingSource{target: r2.Vec{X: 3, Y: 4}, present: true}

	a := &components.Agent{Goal: components.SeekingFood}
	if got, ok := ResolveTarget(a, src, lm, p); !ok || got != src.target {
		t.Errorf("expected field target, got %v (ok=%v)", got, ok)
	}
	a.Goal = components.SeekingHome
	ResolveTarget(a, src, lm, p)

	if len(src.calls) != 2 || src.calls[0] != field.ToFood || src.calls[1] != field.ToHome {
		t.Errorf("expected queries on to_food then to_home, got %v", src.calls)
	}
}

func TestResolveTargetAutoPull(t *testing.T) {
	p := testParams()
	lm := Landmarks{Home: r2.Vec{X: 500}, Food: r2.Vec{X: -500}}
	src := &recordingSource{target: r2.Vec{X: 3, Y: 4}, present: true}

	a := &components.Agent{Pos: r2.Vec{X: -450}, Goal: components.SeekingFood}
	got, ok := ResolveTarget(a, src, lm, p)
	if !ok || got != lm.Food {
		t.Errorf("expected food landmark, got %v (ok=%v)", got, ok)
	}
	if len(src.calls) != 0 {
		t.Errorf("expected the field not to be queried, got %d calls", len(src.calls))
	}
}

func TestSteerTowardTarget(t *testing.T) {
	p := testParams()
	a := &components.Agent{Pos: r2.Vec{X: 1, Y: 1}, Vel: r2.Vec{X: 1}}

	if Steer(a, r2.Vec{X: 11, Y: 1}, true, constRand(0.5), p) {
		t.Error("expected seek, not wander")
	}

	jitter := p.JitterMin + 0.5*(p.JitterMax-p.JitterMin)
	want := p.SteerFactor * (10 - 1) * jitter
	if !near(a.Accel.X, want) || !near(a.Accel.Y, 0) {
		t.Errorf("expected accel (%v, 0), got %v", want, a.Accel)
	}
}

func TestSteerWandersWithoutTarget(t *testing.T) {
	p := testParams()
	a := &components.Agent{}

	if !Steer(a, r2.Vec{}, false, rand.New(rand.NewSource(3)), p) {
		t.Error("expected wander")
	}
	if !near(r2.Norm(a.Accel), p.Wander) {
		t.Errorf("expected nudge of length %v, got %v", p.Wander, r2.Norm(a.Accel))
	}
}

func TestAvoidWalls(t *testing.T) {
	p := testParams()
	rng := rand.New(rand.NewSource(9))

	inside := &components.Agent{Pos: r2.Vec{}}
	if AvoidWalls(inside, rng, p) || inside.Accel != (r2.Vec{}) {
		t.Error("expected no correction in the interior")
	}

	edges := []r2.Vec{
		{X: -p.HalfW + 1},
		{X: p.HalfW - 1},
		{Y: p.HalfH - 1},
		{Y: -p.HalfH + 1},
	}
	for _, pos := range edges {
		a := &components.Agent{Pos: pos}
		if !AvoidWalls(a, rng, p) {
			t.Errorf("expected correction at %v", pos)
			continue
		}
		// The force points back toward the interior
		if r2.Dot(a.Accel, r2.Scale(-1, pos)) <= 0 {
			t.Errorf("expected inward force at %v, got %v", pos, a.Accel)
		}
	}
}

func TestDepositUsesOppositeChannel(t *testing.T) {
	d := &recordingDepositor{}
	a := &components.Agent{Pos: r2.Vec{X: 12.7, Y: -3.9}, Goal: components.SeekingFood, DepositStrength: 4}

	Deposit(a, d)
	a.Goal = components.SeekingHome
	Deposit(a, d)

	if len(d.deposits) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(d.deposits))
	}
	if d.deposits[0].ch != field.ToHome || d.deposits[1].ch != field.ToFood {
		t.Errorf("expected to_home then to_food, got %v, %v", d.deposits[0].ch, d.deposits[1].ch)
	}
	if d.deposits[0].pos != (r2.Vec{X: 12, Y: -3}) {
		t.Errorf("expected truncated position (12, -3), got %v", d.deposits[0].pos)
	}
	if d.deposits[0].amount != 4 {
		t.Errorf("expected amount 4, got %v", d.deposits[0].amount)
	}
}

func TestAgentReachesFoodAndTurnsAround(t *testing.T) {
	cfg := config.Default()
	p := AntParamsFromConfig(cfg)
	lm := Landmarks{Home: r2.Vec{X: 600}, Food: r2.Vec{X: -600}}
	rng := rand.New(rand.NewSource(1))

	f := field.New(field.OptionsFromConfig(cfg))
	// A strong to-food trail beside the agent that would pull it off course
	for y := 10.0; y < 40; y += 5 {
		f.Deposit(field.ToFood, r2.Vec{X: -540, Y: y}, 10)
	}
	f.Reindex()

	a := &components.Agent{Pos: r2.Vec{X: -540}, Vel: r2.Vec{X: 1}, Goal: components.SeekingFood}
	flipped := false
	for i := 0; i < 200; i++ {
		before := a.Vel
		res := UpdateGoal(a, lm, p, int32(i))
		if res.Transition == PickedUp {
			if a.Vel != r2.Scale(-1, before) {
				t.Errorf("expected velocity %v inverted, got %v", before, a.Vel)
			}
			flipped = true
			break
		}

		target, ok := ResolveTarget(a, f, lm, p)
		if !ok || target != lm.Food {
			t.Fatalf("step %d: expected to steer straight at food, got %v (ok=%v)", i, target, ok)
		}
		Steer(a, target, ok, rng, p)
		Integrate(a, p.Speed)
	}
	if !flipped {
		t.Fatalf("agent never reached food, ended at %v", a.Pos)
	}
	if a.Goal != components.SeekingHome {
		t.Fatalf("expected SeekingHome, got %v", a.Goal)
	}

	a.DepositStrength = 3
	Deposit(a, f)
	stats := f.Stats()
	if stats[field.ToFood].LiveCells != 7 {
		t.Errorf("expected the deposit on to_food (6 trail cells + 1), got %d", stats[field.ToFood].LiveCells)
	}
	if stats[field.ToHome].LiveCells != 0 {
		t.Errorf("expected to_home untouched, got %d cells", stats[field.ToHome].LiveCells)
	}
}

func TestUpdateAgentReportsExploration(t *testing.T) {
	p := testParams()
	lm := Landmarks{Home: r2.Vec{X: 900}, Food: r2.Vec{X: -900}}
	src := &recordingSource{}
	a := &components.Agent{Vel: r2.Vec{X: 1}, Goal: components.SeekingFood}

	res := UpdateAgent(a, src, lm, rand.New(rand.NewSource(5)), p, 0)
	if !res.Explored || res.Dropped {
		t.Errorf("expected an exploring, non-dropped step, got %+v", res)
	}
	if !near(r2.Norm(a.Vel), 1) {
		t.Errorf("expected unit velocity, got %v", a.Vel)
	}
	if !near(r2.Norm(a.Pos), p.Speed) {
		t.Errorf("expected to move %v units, moved %v", p.Speed, r2.Norm(a.Pos))
	}
}
