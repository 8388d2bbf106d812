package graph

import "sort"

// SimilarNode is a vertex with its neighbourhood similarity to a target.
type SimilarNode struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
	Linked     bool    `json:"linked"`
}

// JaccardSimilarity computes |a ∩ b| / |a ∪ b| over two id sets.
// Returns 0.0 when both sets are empty.
func JaccardSimilarity(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, id := range a {
		setA[id] = true
	}
	setB := make(map[string]bool, len(b))
	for _, id := range b {
		setB[id] = true
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0.0
	}

	inter := 0
	for id := range setA {
		if setB[id] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// FindSimilar finds the top-N vertices whose neighbours overlap most with
// those of targetID. Only vertices with similarity >= minSimilarity are
// returned, sorted by descending similarity then id. Linked marks candidates
// already adjacent to the target.
func FindSimilar(snap *GraphSnapshot, targetID string, topN int, minSimilarity float64) []SimilarNode {
	target, ok := snap.Adj[targetID]
	if !ok {
		return nil
	}
	adjacent := make(map[string]bool, len(target))
	for _, id := range target {
		adjacent[id] = true
	}

	var results []SimilarNode
	for _, id := range snap.NodeIDs() {
		if id == targetID {
			continue
		}
		sim := JaccardSimilarity(target, snap.Adj[id])
		if sim > 0 && sim >= minSimilarity {
			results = append(results, SimilarNode{
				ID:         id,
				Title:      snap.Nodes[id].Title,
				Similarity: sim,
				Linked:     adjacent[id],
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}
