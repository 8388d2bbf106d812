package render

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"socialgraph/internal/physics"
)

func TestBuild(t *testing.T) {
	b := NewBuilder(nil, physics.Viewport{Width: 800, Height: 600})
	nodes := []physics.Frame{
		{ID: "a", Position: physics.Vec(0, 0), Radius: 20, Kind: physics.Organization, Links: []string{"b"}},
		{ID: "b", Position: physics.Vec(100, 0), Radius: 40, Kind: physics.People},
	}
	styles := map[string]Style{"a": {Title: "Acme", Color: "223,87,69"}}

	fr := b.Build(nodes, styles, "b")
	if fr.Seq != 1 || len(fr.Nodes) != 2 || len(fr.Edges) != 1 {
		t.Fatalf("unexpected frame %+v", fr)
	}
	a := fr.Nodes[0]
	if a.Title != "Acme" || a.Shape != Circle || a.Screen != physics.Vec(400, 300) || a.TextSize != 12 {
		t.Errorf("unexpected node %+v", a)
	}
	if a.Outline != nil {
		t.Errorf("circles have no outline, got %v", a.Outline)
	}
	if sq := fr.Nodes[1].Outline; len(sq) != 4 || sq[0] != physics.Vec(460, 260) || sq[2] != physics.Vec(540, 340) {
		t.Errorf("unexpected square outline %v", sq)
	}
	if !fr.Nodes[1].Selected || a.Selected {
		t.Error("selection not marked")
	}
	e := fr.Edges[0]
	if e.Color != "223,87,69" || !e.Selected || !near(e.Arrow.Start, physics.Vec(420, 300)) || !near(e.Arrow.End, physics.Vec(460, 300)) {
		t.Errorf("unexpected edge %+v", e)
	}

	if next := b.Build(nodes, styles, ""); next.Seq != 2 {
		t.Errorf("sequence should increase, got %d", next.Seq)
	}
}

func TestBuild_DanglingLinksWarnOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBuilder(zap.New(core), physics.Viewport{})
	nodes := []physics.Frame{
		{ID: "a", Radius: 20, Links: []string{"ghost", "ghost2"}},
	}

	for i := 0; i < 3; i++ {
		fr := b.Build(nodes, nil, "")
		if len(fr.Edges) != 0 || fr.Dangling != 2 {
			t.Fatalf("dangling links should be skipped and counted: %+v", fr)
		}
	}
	if n := logs.FilterMessage("skipping link to unknown vertex").Len(); n != 2 {
		t.Errorf("expected one warning per pair, got %d", n)
	}
}

func TestBuild_Empty(t *testing.T) {
	fr := NewBuilder(nil, physics.Viewport{}).Build(nil, nil, "")
	if len(fr.Nodes) != 0 || fr.Edges == nil {
		t.Errorf("empty frame should have no nodes and a non-nil edge list: %+v", fr)
	}
}

func TestRendererFunc(t *testing.T) {
	var got uint64
	var r Renderer = RendererFunc(func(fr Frame) { got = fr.Seq })
	r.Render(Frame{Seq: 7})
	if got != 7 {
		t.Errorf("got %d", got)
	}
}
