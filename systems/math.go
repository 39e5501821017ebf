package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rand is the random source consumed by steering. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Uniform returns a uniform random value in [lo, hi).
func Uniform(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// RandomUnit returns a uniformly oriented unit vector.
func RandomUnit(rng Rand) r2.Vec {
	theta := rng.Float64() * 2 * math.Pi
	return r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
}

// finite reports whether both components are neither NaN nor infinite.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// distanceSq returns the squared distance between two points.
func distanceSq(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(a, b))
}

// rotationAngle returns the direction of from-to, in [0, 2*Pi).
func rotationAngle(from, to r2.Vec) float64 {
	angle := math.Atan2(from.Y-to.Y, from.X-to.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// HeadingFor returns the render heading of an agent that moved from one
// point to another.
func HeadingFor(from, to r2.Vec) float64 {
	return normalizeHeading(rotationAngle(from, to) + math.Pi/2)
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	const twoPi = 2 * math.Pi
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	return h
}
