package physics

import (
	"math"
	"testing"
)

func node(id string, x, y float64) *Node {
	return &Node{ID: id, Position: Vec(x, y)}
}

func TestBlend_ZeroAtMargin(t *testing.T) {
	if f := Blend(1); f != 0 {
		t.Errorf("Blend(1) = %v, want 0", f)
	}
	if f := Blend(0.5); f >= 0 {
		t.Errorf("Blend(0.5) = %v, want repulsive (<0)", f)
	}
	if f := Blend(2); f <= 0 {
		t.Errorf("Blend(2) = %v, want attractive (>0)", f)
	}
}

func TestComputeVelocity_NoForceAtEquilibrium(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("a", 0, 0)
	b := node("b", 220, 0)
	if got := m.MarginSum(a, b); got != 220 {
		t.Fatalf("margin sum %v, want 220", got)
	}
	v := m.ComputeVelocity(a, []*Node{a, b})
	if v.X != 0 || v.Y != 0 {
		t.Errorf("velocity at x=1 should be zero, got %v", v)
	}
}

func TestComputeVelocity_Scenario(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("A", 0, 0)
	b := node("B", 10, 0)

	x := 10.0 / 220.0
	f := (x - 1) / (x * x)
	if f > -460 || f < -470 {
		t.Fatalf("blend factor %v, expected about -462", f)
	}

	v := m.ComputeVelocity(b, []*Node{a, b})
	want := -10*f/10 + 10*-0.002
	if math.Abs(v.X-want) > 1e-9 || v.Y != 0 {
		t.Errorf("velocity of B = %v, want (%v, 0)", v, want)
	}
	if v.X <= 0 {
		t.Errorf("B should be pushed away from A along +x, got %v", v)
	}
}

func TestComputeVelocity_SkipsSelf(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("a", 50, 0)
	v := m.ComputeVelocity(a, []*Node{a})
	if want := Vec(50*-0.002, 0); v != want {
		t.Errorf("lonely node velocity %v, want %v", v, want)
	}
}

func TestComputeVelocity_HeavierNodesPulledHarder(t *testing.T) {
	m := NewForceModel(DefaultParams())
	light := &Node{ID: "l", Position: Vec(100, 0)}
	heavy := &Node{ID: "h", Members: 9, Position: Vec(100, 0)}
	if l, h := m.Center(light).Norm(), m.Center(heavy).Norm(); h <= l {
		t.Errorf("heavy pull %v should exceed light pull %v", h, l)
	}
}

func TestComputeVelocity_CoincidentNodesSeparate(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("a", 5, 5)
	b := node("b", 5, 5)
	all := []*Node{a, b}

	va := m.ComputeVelocity(a, all)
	vb := m.ComputeVelocity(b, all)
	for _, v := range []Vector2{va, vb} {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			t.Fatalf("velocity not finite: %v", v)
		}
	}
	if va.X >= 0 || vb.X <= 0 {
		t.Errorf("coincident nodes should be pushed apart, got a=%v b=%v", va, vb)
	}
}

func TestStep_CoincidentNodesStayBounded(t *testing.T) {
	s := NewSimulator(DefaultParams())
	a := node("a", 5, 5)
	b := node("b", 5, 5)
	if err := s.Replace([]*Node{a, b}); err != nil {
		t.Fatal(err)
	}

	s.Step(1)
	pa, _ := s.Node("a")
	pb, _ := s.Node("b")
	// 600 px/ms repulsion at the clamp plus the centre pull.
	if math.Abs(pa.Position.X-(5-600-0.01)) > 1e-6 || math.Abs(pb.Position.X-(5+600-0.01)) > 1e-6 {
		t.Fatalf("unexpected first step a=%v b=%v", pa.Position, pb.Position)
	}

	for i := 0; i < 2000; i++ {
		s.Step(1)
	}
	for _, n := range s.Nodes() {
		if math.Abs(n.Position.X) > 400 || math.Abs(n.Position.Y) > 300 {
			t.Errorf("node %s left the default viewport: %v", n.ID, n.Position)
		}
	}
}

func TestPairwise_NearbyNodesClampedAlongTheirAxis(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("a", 0, 0)
	b := node("b", 0, 1)
	v := m.Pairwise(b, a)
	if v.X != 0 || math.Abs(v.Y-600) > 1e-6 {
		t.Errorf("clamped repulsion should keep the pair's direction, got %v", v)
	}
}

func TestComputeVelocity_DoesNotMutate(t *testing.T) {
	m := NewForceModel(DefaultParams())
	a := node("a", 1, 2)
	b := node("b", 3, 4)
	m.ComputeVelocity(a, []*Node{a, b})
	if a.Position != Vec(1, 2) || b.Position != Vec(3, 4) {
		t.Error("ComputeVelocity changed node positions")
	}
}
