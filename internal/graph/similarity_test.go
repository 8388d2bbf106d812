package graph

import (
	"math"
	"testing"
)

func TestJaccardSimilarity_Identical(t *testing.T) {
	if sim := JaccardSimilarity([]string{"a", "b"}, []string{"b", "a"}); sim != 1.0 {
		t.Errorf("expected 1.0, got %f", sim)
	}
}

func TestJaccardSimilarity_Disjoint(t *testing.T) {
	if sim := JaccardSimilarity([]string{"a"}, []string{"b"}); sim != 0.0 {
		t.Errorf("expected 0.0, got %f", sim)
	}
}

func TestJaccardSimilarity_Partial(t *testing.T) {
	sim := JaccardSimilarity([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	if math.Abs(sim-0.5) > 0.0001 {
		t.Errorf("expected 0.5, got %f", sim)
	}
}

func TestJaccardSimilarity_Empty(t *testing.T) {
	if sim := JaccardSimilarity(nil, nil); sim != 0.0 {
		t.Errorf("expected 0.0 for empty sets, got %f", sim)
	}
}

func TestJaccardSimilarity_IgnoresDuplicates(t *testing.T) {
	if sim := JaccardSimilarity([]string{"a", "a"}, []string{"a"}); sim != 1.0 {
		t.Errorf("expected 1.0, got %f", sim)
	}
}

func TestFindSimilar(t *testing.T) {
	// A and D share both neighbours; C shares one of A's two.
	snap := quickSnapshot(
		[]string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "B"}, {"A", "C"}, {"D", "B"}, {"D", "C"}, {"E", "B"}},
	)

	results := FindSimilar(snap, "A", 10, 0.0)
	if len(results) == 0 {
		t.Fatal("expected similar vertices")
	}
	if results[0].ID != "D" || results[0].Similarity != 1.0 {
		t.Errorf("expected D first with 1.0, got %+v", results[0])
	}
	for _, r := range results {
		if r.ID == "A" {
			t.Error("target should be excluded")
		}
	}
}

func TestFindSimilar_TopN(t *testing.T) {
	snap := quickSnapshot(
		[]string{"hub", "a", "b", "c"},
		[][2]string{{"hub", "a"}, {"hub", "b"}, {"hub", "c"}},
	)
	results := FindSimilar(snap, "a", 1, 0.0)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Linked {
		t.Errorf("%s is not adjacent to a", results[0].ID)
	}
}

func TestFindSimilar_MinThreshold(t *testing.T) {
	snap := quickSnapshot(
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"A", "C"}, {"D", "B"}},
	)
	results := FindSimilar(snap, "A", 10, 0.9)
	if len(results) != 0 {
		t.Errorf("expected nothing above 0.9, got %+v", results)
	}
}

func TestFindSimilar_UnknownTarget(t *testing.T) {
	snap := quickSnapshot([]string{"A"}, nil)
	if results := FindSimilar(snap, "missing", 10, 0); results != nil {
		t.Errorf("expected nil, got %+v", results)
	}
}
