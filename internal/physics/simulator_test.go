package physics

import (
	"errors"
	"math"
	"testing"
)

func TestStep_EmptyIsNoop(t *testing.T) {
	s := NewSimulator(DefaultParams())
	s.Step(1)
	if s.Len() != 0 {
		t.Errorf("expected no nodes, got %d", s.Len())
	}
}

func TestStep_ScenarioRepulsion(t *testing.T) {
	s := NewSimulator(DefaultParams())
	a, b := node("A", 0, 0), node("B", 10, 0)
	mustAdd(t, s, a, b)

	s.Step(1)
	if b.Position.X <= 10 {
		t.Errorf("B should move towards +x, got %v", b.Position)
	}
	if a.Position.X >= 0 {
		t.Errorf("A should move towards -x, got %v", a.Position)
	}
}

func TestStep_SynchronousUpdate(t *testing.T) {
	build := func(order []string) map[string]Vector2 {
		pos := map[string]Vector2{"a": Vec(0, 0), "b": Vec(30, 10), "c": Vec(-20, 40)}
		s := NewSimulator(DefaultParams())
		for _, id := range order {
			mustAdd(t, s, &Node{ID: id, Position: pos[id]})
		}
		for i := 0; i < 10; i++ {
			s.Step(0.05)
		}
		out := make(map[string]Vector2)
		for _, n := range s.Nodes() {
			out[n.ID] = n.Position
		}
		return out
	}

	forward := build([]string{"a", "b", "c"})
	backward := build([]string{"c", "b", "a"})
	for id, p := range forward {
		q := backward[id]
		if math.Abs(p.X-q.X) > 1e-9 || math.Abs(p.Y-q.Y) > 1e-9 {
			t.Errorf("node %s depends on order: %v vs %v", id, p, q)
		}
	}
}

func TestStep_TwoNodesSeparateMonotonically(t *testing.T) {
	p := DefaultParams()
	p.CenterAttraction = 0
	s := NewSimulator(p)
	a, b := node("a", -5, 0), node("b", 5, 0)
	mustAdd(t, s, a, b)
	margin := NewForceModel(p).MarginSum(a, b)

	prev := Distance(a.Position, b.Position)
	for i := 0; i < 10000; i++ {
		s.Step(0.1)
		d := Distance(a.Position, b.Position)
		if d <= prev {
			t.Fatalf("step %d: separation %v did not grow from %v", i, d, prev)
		}
		if d > margin {
			t.Fatalf("step %d: separation %v overshot margin %v", i, d, margin)
		}
		prev = d
	}
	if margin-prev > 1 {
		t.Errorf("separation %v should approach margin %v", prev, margin)
	}
}

func TestStep_TwoNodesWithCenterAttraction(t *testing.T) {
	s := NewSimulator(DefaultParams())
	a, b := node("a", -5, 0), node("b", 5, 0)
	mustAdd(t, s, a, b)
	margin := NewForceModel(s.Params()).MarginSum(a, b)

	prev := Distance(a.Position, b.Position)
	for i := 0; i < 5000; i++ {
		s.Step(0.1)
		d := Distance(a.Position, b.Position)
		if d <= prev {
			t.Fatalf("step %d: separation %v did not grow from %v", i, d, prev)
		}
		prev = d
	}
	if prev < 0.8*margin || prev >= margin {
		t.Errorf("separation %v should settle just inside margin %v", prev, margin)
	}
}

func TestStep_SingleNodeFallsToCenter(t *testing.T) {
	s := NewSimulator(DefaultParams())
	n := node("solo", 300, -120)
	mustAdd(t, s, n)

	prev := Norm(n.Position)
	for i := 0; i < 2000; i++ {
		s.Step(1)
		d := Norm(n.Position)
		if d >= prev {
			t.Fatalf("step %d: distance to origin %v did not shrink from %v", i, d, prev)
		}
		prev = d
	}
	if prev > 10 {
		t.Errorf("node should approach the origin, still at distance %v", prev)
	}
}

func TestSimulator_AddRemoveReplace(t *testing.T) {
	s := NewSimulator(DefaultParams())
	mustAdd(t, s, node("a", 0, 0), node("b", 1, 0), node("c", 2, 0))

	if err := s.Add(node("a", 9, 9)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if err := s.Add(node("", 0, 0)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	if err := s.Remove("b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("b"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if n, ok := s.Node("c"); !ok || n.Position.X != 2 {
		t.Errorf("c should survive removal of b, got %+v", n)
	}

	bad := []*Node{node("x", 0, 0), node("x", 1, 1)}
	if err := s.Replace(bad); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("failed replace must keep old nodes, got %d", s.Len())
	}

	if err := s.Replace([]*Node{node("z", 0, 0)}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Node("a"); ok || s.Len() != 1 {
		t.Errorf("replace should drop previous nodes")
	}
}

func TestSimulator_Snapshot(t *testing.T) {
	s := NewSimulator(DefaultParams())
	mustAdd(t, s,
		&Node{ID: "org", Kind: Organization, Members: 3, Position: Vec(1, 2), Links: []string{"p"}},
		&Node{ID: "p", Kind: People, Position: Vec(-1, 0)},
	)
	frames := s.Snapshot()
	if len(frames) != 2 || frames[0].ID != "org" || frames[1].ID != "p" {
		t.Fatalf("unexpected snapshot order: %+v", frames)
	}
	if frames[0].Radius != 40 || frames[0].Kind != Organization || frames[0].Position != Vec(1, 2) {
		t.Errorf("unexpected frame %+v", frames[0])
	}
	frames[0].Links[0] = "mutated"
	if n, _ := s.Node("org"); n.Links[0] != "p" {
		t.Error("snapshot shares link storage with nodes")
	}
}

func mustAdd(t *testing.T, s *Simulator, nodes ...*Node) {
	t.Helper()
	for _, n := range nodes {
		if err := s.Add(n); err != nil {
			t.Fatal(err)
		}
	}
}
