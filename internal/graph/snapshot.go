package graph

import (
	"sort"

	"socialgraph/internal/physics"
)

// NodeInfo is a lightweight vertex representation for analysis
type NodeInfo struct {
	ID       string
	Title    string
	Kind     physics.Kind
	Members  int
	Position *physics.Vector2
}

// EdgeInfo is one directed link
type EdgeInfo struct {
	Source string
	Target string
}

// GraphSnapshot holds the link graph with precomputed adjacency lists
type GraphSnapshot struct {
	Nodes    map[string]*NodeInfo
	Edges    []EdgeInfo
	Adj      map[string][]string // undirected
	OutAdj   map[string][]string // directed: source -> targets
	InAdj    map[string][]string // directed: target -> sources
	Dangling []EdgeInfo          // links whose target is not a vertex
}

// NewSnapshot builds a GraphSnapshot from raw nodes and edges. Edges with a
// missing endpoint are kept aside in Dangling.
func NewSnapshot(nodes []*NodeInfo, edges []EdgeInfo) *GraphSnapshot {
	nodeMap := make(map[string]*NodeInfo, len(nodes))
	adj := make(map[string][]string)
	outAdj := make(map[string][]string)
	inAdj := make(map[string][]string)

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = nil // ensure entry exists
		outAdj[n.ID] = nil
		inAdj[n.ID] = nil
	}

	var kept, dangling []EdgeInfo
	for _, e := range edges {
		_, okS := nodeMap[e.Source]
		_, okT := nodeMap[e.Target]
		if !okS || !okT {
			dangling = append(dangling, e)
			continue
		}
		kept = append(kept, e)
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		outAdj[e.Source] = append(outAdj[e.Source], e.Target)
		inAdj[e.Target] = append(inAdj[e.Target], e.Source)
	}

	return &GraphSnapshot{
		Nodes:    nodeMap,
		Edges:    kept,
		Adj:      adj,
		OutAdj:   outAdj,
		InAdj:    inAdj,
		Dangling: dangling,
	}
}

// SnapshotFromDocument builds the link graph of d.
func SnapshotFromDocument(d *Document) *GraphSnapshot {
	nodes := make([]*NodeInfo, 0, len(d.Vertices))
	var edges []EdgeInfo
	for _, v := range d.Vertices {
		nodes = append(nodes, &NodeInfo{
			ID:       v.ID,
			Title:    v.Title,
			Kind:     v.Kind(),
			Members:  len(v.Members),
			Position: v.Position,
		})
		for _, target := range v.Links {
			edges = append(edges, EdgeInfo{Source: v.ID, Target: target})
		}
	}
	return NewSnapshot(nodes, edges)
}

// FilterToKind returns a new snapshot containing only vertices of kind k and
// the links between them
func (s *GraphSnapshot) FilterToKind(k physics.Kind) *GraphSnapshot {
	var filteredNodes []*NodeInfo
	filteredSet := make(map[string]bool)
	for _, id := range s.NodeIDs() {
		if n := s.Nodes[id]; n.Kind == k {
			filteredNodes = append(filteredNodes, n)
			filteredSet[id] = true
		}
	}

	var filteredEdges []EdgeInfo
	for _, e := range s.Edges {
		if filteredSet[e.Source] && filteredSet[e.Target] {
			filteredEdges = append(filteredEdges, e)
		}
	}

	return NewSnapshot(filteredNodes, filteredEdges)
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *GraphSnapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
