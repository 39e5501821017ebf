// Package field implements the pheromone signal field: sparse decaying
// grids, a rebuildable spatial index over their live cells, and cached
// steer-target queries.
package field

import "math"

// Cell addresses one discretized grid unit.
type Cell struct {
	X, Y int32
}

// CellAt converts a world position to a cell of the given size.
// Coordinates are truncated toward zero.
func CellAt(x, y, size float64) Cell {
	return Cell{X: int32(x / size), Y: int32(y / size)}
}

// DefaultReinforceFraction is the share of a deposit added to a cell
// that already holds signal.
const DefaultReinforceFraction = 0.25

// DecayGrid is a sparse map from cell to strength in [0, maxStrength].
// Cells are created on the first positive deposit, reinforced by later
// deposits, decayed uniformly and removed only by Prune.
// It is not safe for concurrent mutation.
type DecayGrid struct {
	maxStrength       float64
	reinforceFraction float64
	values            map[Cell]float64
}

// NewDecayGrid creates an empty grid. A negative maxStrength is clamped to 0
// and reinforceFraction is clamped to [0, 1].
func NewDecayGrid(maxStrength, reinforceFraction float64) *DecayGrid {
	return &DecayGrid{
		maxStrength:       math.Max(0, maxStrength),
		reinforceFraction: math.Min(1, math.Max(0, reinforceFraction)),
		values:            make(map[Cell]float64),
	}
}

// MaxStrength returns the per-cell cap.
func (g *DecayGrid) MaxStrength() float64 { return g.maxStrength }

// Deposit adds signal to a cell. The first deposit sets the cell to amount;
// later deposits add amount*reinforceFraction. Both are capped at maxStrength.
// Non-positive amounts are ignored.
func (g *DecayGrid) Deposit(c Cell, amount float64) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return
	}

	old, ok := g.values[c]
	if !ok {
		g.values[c] = math.Min(amount, g.maxStrength)
		return
	}
	g.values[c] = math.Min(g.maxStrength, old+amount*g.reinforceFraction)
}

// Decay subtracts rate from every cell, flooring at zero.
// Zeroed cells stay in the map until Prune.
func (g *DecayGrid) Decay(rate float64) {
	if !(rate > 0) {
		return
	}
	for c, v := range g.values {
		g.values[c] = math.Max(v-rate, 0)
	}
}

// Prune removes every cell whose strength is not positive and returns how
// many were removed.
func (g *DecayGrid) Prune() int {
	removed := 0
	for c, v := range g.values {
		if v <= 0 {
			delete(g.values, c)
			removed++
		}
	}
	return removed
}

// Strength returns the current strength of a cell.
func (g *DecayGrid) Strength(c Cell) (float64, bool) {
	v, ok := g.values[c]
	return v, ok
}

// Len returns the number of cells held, including zeroed ones awaiting Prune.
func (g *DecayGrid) Len() int { return len(g.values) }

// Total returns the summed strength over all cells.
func (g *DecayGrid) Total() float64 {
	var sum float64
	for _, v := range g.values {
		sum += v
	}
	return sum
}

// Values returns a copy of the cell mapping.
func (g *DecayGrid) Values() map[Cell]float64 {
	out := make(map[Cell]float64, len(g.values))
	for c, v := range g.values {
		out[c] = v
	}
	return out
}

// appendPositive appends every cell with positive strength to dst.
func (g *DecayGrid) appendPositive(dst []Cell) []Cell {
	for c, v := range g.values {
		if v > 0 {
			dst = append(dst, c)
		}
	}
	return dst
}
