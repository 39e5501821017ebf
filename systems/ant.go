package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/field"
)

// SteerSource answers steer-target queries. *field.Field satisfies it.
type SteerSource interface {
	SteerTarget(ch field.Channel, pos r2.Vec) (r2.Vec, bool)
}

// Depositor accepts pheromone deposits. *field.Field satisfies it.
type Depositor interface {
	Deposit(ch field.Channel, pos r2.Vec, amount float64)
}

// Landmarks are the fixed home and food positions.
type Landmarks struct {
	Home, Food r2.Vec
}

// LandmarksFromConfig reads landmark positions from the config.
func LandmarksFromConfig(cfg *config.Config) Landmarks {
	return Landmarks{
		Home: r2.Vec{X: cfg.Colony.Home.X, Y: cfg.Colony.Home.Y},
		Food: r2.Vec{X: cfg.Colony.Food.X, Y: cfg.Colony.Food.Y},
	}
}

// AntParams holds the motion constants used by the agent controller.
type AntParams struct {
	Speed       float64
	SteerFactor float64
	JitterMin   float64
	JitterMax   float64
	Wander      float64

	Border       float64
	HalfW, HalfH float64

	HomeRadiusSq     float64
	PickupRadiusSq   float64
	AutoPullRadiusSq float64
}

// AntParamsFromConfig derives controller constants from the config.
func AntParamsFromConfig(cfg *config.Config) AntParams {
	return AntParams{
		Speed:            cfg.Ant.Speed,
		SteerFactor:      cfg.Ant.SteerFactor,
		JitterMin:        cfg.Ant.SteerJitterMin,
		JitterMax:        cfg.Ant.SteerJitterMax,
		Wander:           cfg.Ant.WanderStrength,
		Border:           cfg.Ant.Border,
		HalfW:            cfg.Derived.HalfW,
		HalfH:            cfg.Derived.HalfH,
		HomeRadiusSq:     cfg.Derived.HomeRadiusSq,
		PickupRadiusSq:   cfg.Derived.FoodPickupRadiusSq,
		AutoPullRadiusSq: cfg.Derived.AutoPullRadiusSq,
	}
}

// Transition describes a goal change during a step.
type Transition uint8

const (
	NoTransition Transition = iota
	PickedUp                // SeekingFood -> SeekingHome
	Delivered               // SeekingHome -> SeekingFood
)

// StepResult reports what happened to one agent during UpdateAgent.
type StepResult struct {
	Transition Transition
	TripTicks  int32 // round-trip duration, set on Delivered
	Explored   bool  // no target resolved, wandered instead
	Dropped    bool  // integration skipped a non-finite step
}

// UpdateGoal flips the goal when the agent reaches its landmark and turns
// it around on the spot.
func UpdateGoal(a *components.Agent, lm Landmarks, p AntParams, tick int32) StepResult {
	var res StepResult
	switch a.Goal {
	case components.SeekingFood:
		if distanceSq(a.Pos, lm.Food) <= p.PickupRadiusSq {
			a.Goal = components.SeekingHome
			a.Vel = r2.Scale(-1, a.Vel)
			res.Transition = PickedUp
		}
	case components.SeekingHome:
		if distanceSq(a.Pos, lm.Home) <= p.HomeRadiusSq {
			a.Goal = components.SeekingFood
			a.Vel = r2.Scale(-1, a.Vel)
			res.Transition = Delivered
			res.TripTicks = tick - a.TripStartTick
			a.TripStartTick = tick
		}
	}
	return res
}

// ResolveTarget picks the point the agent steers toward. Near its goal
// landmark the agent heads straight for it; elsewhere it follows the
// trail matching its goal.
func ResolveTarget(a *components.Agent, src SteerSource, lm Landmarks, p AntParams) (r2.Vec, bool) {
	landmark := a.Goal.Landmark(lm.Home, lm.Food)
	if distanceSq(a.Pos, landmark) <= p.AutoPullRadiusSq {
		return landmark, true
	}
	return src.SteerTarget(a.Goal.FollowChannel(), a.Pos)
}

// Steer accumulates a seek force toward target, or a random nudge when
// there is no target. Returns true when the agent wandered.
func Steer(a *components.Agent, target r2.Vec, ok bool, rng Rand, p AntParams) bool {
	if !ok {
		a.Accel = r2.Add(a.Accel, r2.Scale(p.Wander, RandomUnit(rng)))
		return true
	}
	force := seek(a, target, p.SteerFactor)
	force = r2.Scale(Uniform(rng, p.JitterMin, p.JitterMax), force)
	a.Accel = r2.Add(a.Accel, force)
	return false
}

// seek returns factor * ((target - pos) - vel).
func seek(a *components.Agent, target r2.Vec, factor float64) r2.Vec {
	desired := r2.Sub(target, a.Pos)
	return r2.Scale(factor, r2.Sub(desired, a.Vel))
}

// NearWall reports whether pos is inside the border margin of the world.
func NearWall(pos r2.Vec, p AntParams) bool {
	xBound := pos.X < -p.HalfW+p.Border || pos.X >= p.HalfW-p.Border
	yBound := pos.Y >= p.HalfH-p.Border || pos.Y < -p.HalfH+p.Border
	return xBound || yBound
}

// AvoidWalls steers an agent inside the border margin toward a random
// interior point. Returns true when a correction was applied.
func AvoidWalls(a *components.Agent, rng Rand, p AntParams) bool {
	if !NearWall(a.Pos, p) {
		return false
	}
	interior := r2.Vec{
		X: Uniform(rng, -p.HalfW+p.Border, p.HalfW-p.Border),
		Y: Uniform(rng, -p.HalfH+p.Border, p.HalfH-p.Border),
	}
	a.Accel = r2.Add(a.Accel, seek(a, interior, p.SteerFactor))
	return true
}

// Integrate applies the accumulated steering, moves the agent at speed and
// clears the acceleration. A step that would produce a non-finite velocity
// or position is dropped and the last valid state kept. Returns false when
// anything was dropped.
func Integrate(a *components.Agent, speed float64) bool {
	next := r2.Add(a.Vel, a.Accel)
	a.Accel = r2.Vec{}

	n := r2.Norm(next)
	if !finite(next) || !(n > 0) || math.IsInf(n, 0) {
		return false
	}
	vel := r2.Scale(1/n, next)
	if !finite(vel) {
		return false
	}
	a.Vel = vel

	old := a.Pos
	pos := r2.Add(old, r2.Scale(speed, vel))
	if !finite(pos) {
		return false
	}
	a.Pos = pos

	if pos != old {
		a.Heading = HeadingFor(old, pos)
	}
	return true
}

// Deposit lays the agent's pheromone at its integer-truncated position,
// on the channel opposite its goal.
func Deposit(a *components.Agent, d Depositor) {
	at := r2.Vec{X: math.Trunc(a.Pos.X), Y: math.Trunc(a.Pos.Y)}
	d.Deposit(a.Goal.DepositChannel(), at, a.DepositStrength)
}

// UpdateAgent runs one movement step: goal check, target resolution,
// steering and integration. Wall avoidance and deposits run on their own
// cadences and are not part of this step.
func UpdateAgent(a *components.Agent, src SteerSource, lm Landmarks, rng Rand, p AntParams, tick int32) StepResult {
	res := UpdateGoal(a, lm, p, tick)

	target, ok := ResolveTarget(a, src, lm, p)
	res.Explored = Steer(a, target, ok, rng, p)

	res.Dropped = !Integrate(a, p.Speed)
	return res
}
