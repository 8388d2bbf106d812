package physics

import (
	"math"
	"math/rand/v2"
)

// FindNearest scans nodes for the one closest to point. Ties go to the lowest
// index.
func FindNearest(nodes []*Node, point Vector2) (string, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, n := range nodes {
		if d := Distance(point, n.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return nodes[best].ID, true
}

// FindAt returns the first node, in index order, whose disc strictly contains
// point.
func FindAt(nodes []*Node, point Vector2, p Params) (string, bool) {
	for _, n := range nodes {
		if Distance(point, n.Position) < n.Radius(p) {
			return n.ID, true
		}
	}
	return "", false
}

// Viewport is the visible area, centred on the origin.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Center is the origin expressed in screen coordinates.
func (v Viewport) Center() Vector2 {
	return Vec(v.Width/2, v.Height/2)
}

// RandomPoint draws a uniform point in [-w/2, w/2] x [-h/2, h/2].
func (v Viewport) RandomPoint(r *rand.Rand) Vector2 {
	return Vec((r.Float64()-0.5)*v.Width, (r.Float64()-0.5)*v.Height)
}
