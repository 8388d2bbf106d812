package render

import (
	"math"

	"socialgraph/internal/physics"
)

// ArrowWing is the length of each arrow head wing, in pixels.
const ArrowWing = 15

// Shape is the outline used to draw a vertex.
type Shape string

const (
	Circle  Shape = "circle"
	Square  Shape = "square"
	Diamond Shape = "diamond"
)

// ShapeFor maps a vertex kind to its outline: organizations are circles,
// people squares and projects diamonds.
func ShapeFor(k physics.Kind) Shape {
	switch k {
	case physics.Organization:
		return Circle
	case physics.People:
		return Square
	default:
		return Diamond
	}
}

// Outline returns the polygon of a square or diamond of the given radius
// around c. Circles have no polygon and return nil.
func Outline(s Shape, c physics.Vector2, r float64) []physics.Vector2 {
	switch s {
	case Square:
		return []physics.Vector2{
			c.Add(physics.Vec(-r, -r)),
			c.Add(physics.Vec(r, -r)),
			c.Add(physics.Vec(r, r)),
			c.Add(physics.Vec(-r, r)),
		}
	case Diamond:
		return []physics.Vector2{
			c.Add(physics.Vec(-r, 0)),
			c.Add(physics.Vec(0, -r)),
			c.Add(physics.Vec(r, 0)),
			c.Add(physics.Vec(0, r)),
		}
	}
	return nil
}

// TextSize is the label font size for a vertex of radius r.
func TextSize(r float64) int {
	return int(math.Ceil(2.5 * math.Sqrt(r)))
}

// Arrow is a link drawn from the boundary of one disc to the boundary of
// another, with a two-wing head at the target.
type Arrow struct {
	Start physics.Vector2 `json:"start"`
	End   physics.Vector2 `json:"end"`
	Wing1 physics.Vector2 `json:"wing1"`
	Wing2 physics.Vector2 `json:"wing2"`
}

// NewArrow trims the segment from→to by both radii and computes the head.
// It reports false when the two centres coincide and no direction exists.
func NewArrow(from, to physics.Vector2, fromRadius, toRadius float64) (Arrow, bool) {
	axis := to.Sub(from)
	d := axis.Norm()
	if d == 0 {
		return Arrow{}, false
	}
	end := axis.Scale(-toRadius / d).Add(to)
	k := -0.5 * ArrowWing / d
	return Arrow{
		Start: axis.Scale(fromRadius / d).Add(from),
		End:   end,
		Wing1: physics.Vec(axis.X-axis.Y, axis.Y+axis.X).Scale(k).Add(end),
		Wing2: physics.Vec(axis.X+axis.Y, axis.Y-axis.X).Scale(k).Add(end),
	}, true
}
