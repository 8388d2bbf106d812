package graph

import (
	"math/rand/v2"

	"socialgraph/internal/physics"
)

// PlaceMissing gives every vertex without a position a uniform random one
// inside the viewport. It returns the number of vertices placed.
func (d *Document) PlaceMissing(view physics.Viewport, r *rand.Rand) int {
	placed := 0
	for _, v := range d.Vertices {
		if v.Position != nil {
			continue
		}
		p := view.RandomPoint(r)
		v.Position = &p
		placed++
	}
	return placed
}

// Nodes converts the vertices to simulation nodes, in document order.
// Vertices without a position start at the origin; call PlaceMissing first.
func (d *Document) Nodes() []*physics.Node {
	nodes := make([]*physics.Node, 0, len(d.Vertices))
	for _, v := range d.Vertices {
		nodes = append(nodes, VertexNode(v))
	}
	return nodes
}

// VertexNode converts one vertex.
func VertexNode(v *Vertex) *physics.Node {
	n := &physics.Node{
		ID:      v.ID,
		Kind:    v.Kind(),
		Members: len(v.Members),
		Links:   append([]string(nil), v.Links...),
	}
	if v.Position != nil {
		n.Position = *v.Position
	}
	return n
}

// ApplyPositions copies simulated positions back onto the matching vertices.
// Nodes without a matching vertex are ignored.
func (d *Document) ApplyPositions(nodes []*physics.Node) {
	byID := make(map[string]*Vertex, len(d.Vertices))
	for _, v := range d.Vertices {
		byID[v.ID] = v
	}
	for _, n := range nodes {
		if v, ok := byID[n.ID]; ok {
			p := n.Position
			v.Position = &p
		}
	}
}
