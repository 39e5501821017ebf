// Package components defines the plain data carried by simulation agents.
package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/trails/field"
)

// Goal is the current objective of an agent.
type Goal uint8

const (
	SeekingFood Goal = iota
	SeekingHome
)

func (g Goal) String() string {
	switch g {
	case SeekingFood:
		return "seeking_food"
	case SeekingHome:
		return "seeking_home"
	default:
		return "unknown"
	}
}

// FollowChannel is the trail an agent with this goal steers along.
func (g Goal) FollowChannel() field.Channel {
	if g == SeekingHome {
		return field.ToHome
	}
	return field.ToFood
}

// DepositChannel is the trail an agent with this goal lays down.
// It is the opposite of FollowChannel so the next agent heading the other
// way can follow it.
func (g Goal) DepositChannel() field.Channel {
	if g == SeekingHome {
		return field.ToFood
	}
	return field.ToHome
}

// Landmark is the fixed position the goal leads to.
func (g Goal) Landmark(home, food r2.Vec) r2.Vec {
	if g == SeekingHome {
		return home
	}
	return food
}

// Agent is a single ant. Agents hold no references to each other.
type Agent struct {
	ID      uint32
	Pos     r2.Vec
	Z       float64 // render layer
	Vel     r2.Vec  // unit direction; speed is applied at integration
	Accel   r2.Vec  // steering accumulated since the last integration
	Heading float64 // radians

	Goal            Goal
	DepositStrength float64

	// TripStartTick is the tick of the last delivery.
	TripStartTick int32
}

// CarryingFood reports whether the agent should be drawn with food.
func (a *Agent) CarryingFood() bool { return a.Goal == SeekingHome }

// AgentSnapshot is the read-only view of an agent handed to renderers.
type AgentSnapshot struct {
	ID      uint32
	X, Y, Z float64
	Heading float64
	Goal    Goal
}

// Snapshot copies the render-facing state of the agent.
func (a *Agent) Snapshot() AgentSnapshot {
	return AgentSnapshot{
		ID:      a.ID,
		X:       a.Pos.X,
		Y:       a.Pos.Y,
		Z:       a.Z,
		Heading: a.Heading,
		Goal:    a.Goal,
	}
}
