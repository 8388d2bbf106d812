package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"socialgraph/internal/physics"
)

func emptyDoc() *Document {
	return &Document{Metadata: NewMetadata(fixedTime), Vertices: []*Vertex{}}
}

func TestAddVertex(t *testing.T) {
	doc := emptyDoc()
	v, err := doc.AddVertex(physics.Vec(12, -3))
	if err != nil {
		t.Fatal(err)
	}
	if v.Title != "#1" || v.Type != "Organization" || v.ID == "" {
		t.Errorf("unexpected vertex %+v", v)
	}
	if *v.Position != physics.Vec(12, -3) {
		t.Errorf("vertex not placed at the given point: %v", *v.Position)
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("added vertex should validate: %v", err)
	}

	w, _ := doc.AddVertex(physics.Vec(0, 0))
	if w.Title != "#2" {
		t.Errorf("expected #2, got %s", w.Title)
	}
}

func TestNextVertexTitle_ReusesGaps(t *testing.T) {
	doc := emptyDoc()
	for i := 0; i < 3; i++ {
		if _, err := doc.AddVertex(physics.Vec(0, 0)); err != nil {
			t.Fatal(err)
		}
	}
	if err := doc.RemoveVertex(doc.Vertices[1].ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.NextVertexTitle(); got != "#2" {
		t.Errorf("expected freed #2, got %s", got)
	}
}

func TestNextVertexTitle_Exhausted(t *testing.T) {
	doc := emptyDoc()
	for i := 1; i <= MaxAutoTitles; i++ {
		doc.Vertices = append(doc.Vertices, &Vertex{ID: fmt.Sprint(i), Title: fmt.Sprintf("#%d", i)})
	}
	if _, err := doc.AddVertex(physics.Vec(0, 0)); !errors.Is(err, ErrNoFreeTitle) {
		t.Errorf("expected ErrNoFreeTitle, got %v", err)
	}
}

func TestUpdateVertex(t *testing.T) {
	doc := emptyDoc()
	a, _ := doc.AddVertex(physics.Vec(0, 0))
	b, _ := doc.AddVertex(physics.Vec(1, 1))
	if err := doc.AddLink(b.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	title, kind, desc := "Acme", "Project", "rockets"
	got, err := doc.UpdateVertex(a.ID, VertexPatch{Title: &title, Type: &kind, Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Acme" || got.Kind() != physics.Project || got.Description != "rockets" {
		t.Errorf("patch not applied: %+v", got)
	}
	if b.Links[0] != a.ID {
		t.Errorf("renaming broke the link: %v", b.Links)
	}
}

func TestUpdateVertex_InvalidLeavesVertexUnchanged(t *testing.T) {
	doc := emptyDoc()
	a, _ := doc.AddVertex(physics.Vec(0, 0))
	title, bad := "New", "Robot"
	_, err := doc.UpdateVertex(a.ID, VertexPatch{Title: &title, Type: &bad})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if a.Title != "#1" || a.Type != "Organization" {
		t.Errorf("invalid patch partially applied: %+v", a)
	}
}

func TestUpdateVertex_NotFound(t *testing.T) {
	doc := emptyDoc()
	if _, err := doc.UpdateVertex("nope", VertexPatch{}); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("expected ErrVertexNotFound, got %v", err)
	}
}

func TestRemoveVertex_DropsInboundLinks(t *testing.T) {
	doc := emptyDoc()
	a, _ := doc.AddVertex(physics.Vec(0, 0))
	b, _ := doc.AddVertex(physics.Vec(1, 0))
	c, _ := doc.AddVertex(physics.Vec(2, 0))
	for _, l := range [][2]string{{b.ID, a.ID}, {c.ID, a.ID}, {c.ID, b.ID}} {
		if err := doc.AddLink(l[0], l[1]); err != nil {
			t.Fatal(err)
		}
	}

	if err := doc.RemoveVertex(a.ID); err != nil {
		t.Fatal(err)
	}
	if len(doc.Vertices) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(doc.Vertices))
	}
	if len(b.Links) != 0 || len(c.Links) != 1 || c.Links[0] != b.ID {
		t.Errorf("inbound links not cleaned: b=%v c=%v", b.Links, c.Links)
	}
	if err := doc.RemoveVertex(a.ID); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("expected ErrVertexNotFound, got %v", err)
	}
}

func TestAddLink(t *testing.T) {
	doc := emptyDoc()
	a, _ := doc.AddVertex(physics.Vec(0, 0))
	b, _ := doc.AddVertex(physics.Vec(1, 0))
	for i := 0; i < 2; i++ {
		if err := doc.AddLink(a.ID, b.ID); err != nil {
			t.Fatal(err)
		}
	}
	if len(a.Links) != 1 {
		t.Errorf("duplicate link added: %v", a.Links)
	}
	if err := doc.AddLink(a.ID, "ghost"); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("expected ErrVertexNotFound, got %v", err)
	}
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument("../team graph", fixedTime)
	m := doc.Metadata
	if m.Title != "untitled" || m.Alias != "teamgraph" || m.Visibility != "public" || m.License != "CC-BY-SA" {
		t.Errorf("unexpected defaults %+v", m)
	}
	if len(doc.Vertices) != 0 {
		t.Errorf("default graph should be empty")
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("default graph should validate: %v", err)
	}
}

func TestNodesAndPositions(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	doc.Vertices = append(doc.Vertices, &Vertex{ID: "new", Type: "People"})

	placed := doc.PlaceMissing(physics.Viewport{Width: 100, Height: 50}, rand.New(rand.NewPCG(7, 7)))
	if placed != 1 {
		t.Fatalf("expected 1 placement, got %d", placed)
	}
	p := doc.Vertices[2].Position
	if p == nil || p.X < -50 || p.X > 50 || p.Y < -25 || p.Y > 25 {
		t.Errorf("random position outside viewport: %v", p)
	}

	nodes := doc.Nodes()
	if len(nodes) != 3 || nodes[0].Members != 3 || nodes[1].Kind != physics.Project || nodes[2].Kind != physics.People {
		t.Fatalf("unexpected nodes %+v", nodes)
	}

	nodes[0].Position = physics.Vec(7, 8)
	nodes = append(nodes, &physics.Node{ID: "stranger"})
	doc.ApplyPositions(nodes)
	if *doc.Vertices[0].Position != physics.Vec(7, 8) {
		t.Errorf("position not applied: %v", *doc.Vertices[0].Position)
	}
}
