package physics

import (
	"encoding/json"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2 is an immutable 2D vector. Every operation returns a new value.
type Vector2 r2.Vec

// Vec builds a Vector2 from its components.
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns a + b.
func Add(a, b Vector2) Vector2 {
	return Vector2(r2.Add(r2.Vec(a), r2.Vec(b)))
}

// Sub returns a - b.
func Sub(a, b Vector2) Vector2 {
	return Vector2(r2.Sub(r2.Vec(a), r2.Vec(b)))
}

// Scale returns v * k.
func Scale(v Vector2, k float64) Vector2 {
	return Vector2(r2.Scale(k, r2.Vec(v)))
}

// Dot returns the scalar product of a and b.
func Dot(a, b Vector2) float64 {
	return r2.Dot(r2.Vec(a), r2.Vec(b))
}

// Norm returns sqrt(dot(v, v)).
func Norm(v Vector2) float64 {
	return r2.Norm(r2.Vec(v))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector2) float64 {
	return Norm(Sub(a, b))
}

func (v Vector2) Add(o Vector2) Vector2 { return Add(v, o) }
func (v Vector2) Sub(o Vector2) Vector2 { return Sub(v, o) }
func (v Vector2) Scale(k float64) Vector2 { return Scale(v, k) }
func (v Vector2) Dot(o Vector2) float64 { return Dot(v, o) }
func (v Vector2) Norm() float64 { return Norm(v) }
func (v Vector2) Distance(o Vector2) float64 { return Distance(v, o) }
func (v Vector2) IsZero() bool { return v.X == 0 && v.Y == 0 }

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON encodes the vector as {"x": .., "y": ..}.
func (v Vector2) MarshalJSON() ([]byte, error) {
	return json.Marshal(point{X: v.X, Y: v.Y})
}

func (v *Vector2) UnmarshalJSON(b []byte) error {
	var p point
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	v.X, v.Y = p.X, p.Y
	return nil
}
