package graph

import (
	"sort"

	"socialgraph/internal/physics"
)

// OverlapPair is two laid-out vertices whose discs intersect
type OverlapPair struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	ATitle   string  `json:"a_title"`
	BTitle   string  `json:"b_title"`
	Distance float64 `json:"distance"`
	// Depth is how far the discs intrude into each other, in pixels.
	Depth float64 `json:"depth"`
}

// OverlapReport contains layout overlap results
type OverlapReport struct {
	Pairs           []OverlapPair `json:"pairs"`
	PairCount       int           `json:"pair_count"`
	OverlappingIDs  int           `json:"overlapping_vertices"`
	UnplacedCount   int           `json:"unplaced_count"`
	MeanMarginRatio float64       `json:"mean_margin_ratio"`
}

// ComputeOverlap checks the current layout: which discs intersect, how many
// vertices have no position yet, and the mean distance of linked vertices
// relative to their equilibrium margin (1.0 is a settled layout).
func ComputeOverlap(snap *GraphSnapshot, p physics.Params) *OverlapReport {
	nodeIDs := snap.NodeIDs()
	var placed []*NodeInfo
	unplaced := 0
	for _, id := range nodeIDs {
		n := snap.Nodes[id]
		if n.Position == nil {
			unplaced++
			continue
		}
		placed = append(placed, n)
	}

	radius := func(n *NodeInfo) float64 {
		return (&physics.Node{Members: n.Members}).Radius(p)
	}

	var pairs []OverlapPair
	involved := make(map[string]bool)
	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			d := physics.Distance(*a.Position, *b.Position)
			depth := radius(a) + radius(b) - d
			if depth <= 0 {
				continue
			}
			pairs = append(pairs, OverlapPair{
				A:        a.ID,
				B:        b.ID,
				ATitle:   a.Title,
				BTitle:   b.Title,
				Distance: d,
				Depth:    depth,
			})
			involved[a.ID] = true
			involved[b.ID] = true
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Depth > pairs[j].Depth })

	var ratioSum float64
	var ratioCount int
	for _, e := range snap.Edges {
		a, b := snap.Nodes[e.Source], snap.Nodes[e.Target]
		if a.Position == nil || b.Position == nil || a.ID == b.ID {
			continue
		}
		margin := radius(a) + radius(b) + p.ObjectsMargin()
		ratioSum += physics.Distance(*a.Position, *b.Position) / margin
		ratioCount++
	}
	var meanRatio float64
	if ratioCount > 0 {
		meanRatio = ratioSum / float64(ratioCount)
	}

	return &OverlapReport{
		Pairs:           pairs,
		PairCount:       len(pairs),
		OverlappingIDs:  len(involved),
		UnplacedCount:   unplaced,
		MeanMarginRatio: meanRatio,
	}
}
