package physics

import (
	"math/rand/v2"
	"testing"
)

func TestFindAt(t *testing.T) {
	p := DefaultParams()
	nodes := []*Node{
		node("first", 0, 0),
		node("second", 30, 0),
		node("far", 500, 500),
	}

	tests := []struct {
		name   string
		point  Vector2
		want   string
		wantOK bool
	}{
		{"outside every circle", Vec(200, 200), "", false},
		{"inside exactly one", Vec(500, 510), "far", true},
		{"overlap resolves to lowest index", Vec(15, 0), "first", true},
		{"boundary is outside", Vec(520, 500), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindAt(nodes, tt.point, p)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FindAt(%v) = %q,%v want %q,%v", tt.point, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFindNearest(t *testing.T) {
	nodes := []*Node{node("a", 0, 0), node("b", 100, 0), node("c", 100, 0)}
	if got, ok := FindNearest(nodes, Vec(80, 5)); !ok || got != "b" {
		t.Errorf("expected b (first of the tie), got %q", got)
	}
	if _, ok := FindNearest(nil, Vec(0, 0)); ok {
		t.Error("empty set should find nothing")
	}
}

func TestViewportRandomPoint(t *testing.T) {
	v := Viewport{Width: 800, Height: 600}
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		pt := v.RandomPoint(r)
		if pt.X < -400 || pt.X > 400 || pt.Y < -300 || pt.Y > 300 {
			t.Fatalf("point %v outside viewport", pt)
		}
	}
	if c := v.Center(); c != Vec(400, 300) {
		t.Errorf("center %v", c)
	}
}
