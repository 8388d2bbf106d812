package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components returns the connected components of the undirected link graph.
// Each component is sorted and components are ordered by their first id.
func (s *GraphSnapshot) Components() [][]string {
	ids := s.NodeIDs()
	index := make(map[string]int64, len(ids))
	g := simple.NewUndirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range s.Edges {
		from, to := index[e.Source], index[e.Target]
		if from == to || g.HasEdgeBetween(from, to) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	var out [][]string
	for _, c := range topo.ConnectedComponents(g) {
		comp := make([]string, len(c))
		for i, n := range c {
			comp[i] = ids[n.ID()]
		}
		sort.Strings(comp)
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
