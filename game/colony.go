package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/systems"
)

// spawnColony creates every agent at home, seeking food, facing a random
// direction.
func (g *Game) spawnColony() {
	cfg := g.cfg
	g.agents = make([]components.Agent, cfg.Colony.NumAnts)
	for i := range g.agents {
		vel := systems.RandomUnit(g.rng)
		g.agents[i] = components.Agent{
			ID:              uint32(i),
			Pos:             g.landmarks.Home,
			Z:               cfg.Ant.ZIndex,
			Vel:             vel,
			Heading:         headingOf(vel),
			Goal:            components.SeekingFood,
			DepositStrength: cfg.Ant.DepositStrength,
		}
	}
}

// headingOf returns the render heading of an agent moving along vel.
func headingOf(vel r2.Vec) float64 {
	return systems.HeadingFor(r2.Vec{}, vel)
}

// goalCounts returns the number of agents per goal.
func (g *Game) goalCounts() (seekingFood, seekingHome int) {
	for i := range g.agents {
		if g.agents[i].Goal == components.SeekingHome {
			seekingHome++
		} else {
			seekingFood++
		}
	}
	return seekingFood, seekingHome
}
