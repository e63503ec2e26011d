// Package geom provides the 2-D primitives used by the motion simulation.
package geom

import "math"

// Point is a position in scene coordinates (pixels).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DistanceTo returns the Euclidean distance to q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Lerp linearly interpolates between a and b. The fraction t is clamped to
// [0, 1], so t=0 yields a and t=1 yields b.
func Lerp(a, b Point, t float64) Point {
	t = math.Max(0, math.Min(1, t))
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
