package cluster

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

func dims(index int, d ...string) viewspace.ViewSpace {
	return viewspace.ViewSpace{Index: index, Dimensions: d}
}

func groupIndices(groups []viewspace.ClusterGroup) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		for _, m := range g.Members {
			out[i] = append(out[i], m.Index)
		}
	}
	return out
}

func TestGreedy_DuplicatesCollapse(t *testing.T) {
	cands := []viewspace.ViewSpace{
		dims(0, "A", "B"),
		dims(1, "A", "B"),
		dims(2, "C", "D"),
	}

	groups, err := Greedy(context.Background(), cands, field.Catalog{}, similarity.Default(), 0.85, 0)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(groups), groupIndices(groups))
	}
	if groups[0].Representative.Index != 0 {
		t.Errorf("group 1 representative: expected index 0, got %d", groups[0].Representative.Index)
	}
	if groups[1].Representative.Index != 2 {
		t.Errorf("group 2 representative: expected index 2, got %d", groups[1].Representative.Index)
	}
	if len(groups[0].Members) != 2 || groups[0].Members[1].Index != 1 {
		t.Errorf("expected candidate 1 to join group 1, got %v", groupIndices(groups))
	}
}

func TestGreedy_DistinctCandidatesOpenGroups(t *testing.T) {
	cands := []viewspace.ViewSpace{
		dims(0, "A"),
		dims(1, "B"),
		dims(2, "C"),
		dims(3, "D"),
	}

	groups, err := Greedy(context.Background(), cands, field.Catalog{}, similarity.Default(), 0.85, 0)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}
	if len(groups) != 4 {
		t.Fatalf("every dissimilar candidate should become a representative, got %v", groupIndices(groups))
	}
}

func TestGreedy_CapMergesIntoNearest(t *testing.T) {
	cands := []viewspace.ViewSpace{
		dims(0, "A", "B"),
		dims(1, "C", "D"),
		dims(2, "C", "D", "E"), // closest to group 2, below threshold
		dims(3, "A", "B", "F"), // closest to group 1, below threshold
		dims(4, "X"),
	}

	groups, err := Greedy(context.Background(), cands, field.Catalog{}, similarity.Default(), 0.85, 2)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected exactly maxGroups=2 groups, got %d", len(groups))
	}
	got := groupIndices(groups)
	total := len(got[0]) + len(got[1])
	if total != len(cands) {
		t.Fatalf("no candidate may be dropped: %v", got)
	}
	if got[1][1] != 2 {
		t.Errorf("candidate 2 should merge into group 2, got %v", got)
	}
	if got[0][1] != 3 {
		t.Errorf("candidate 3 should merge into group 1, got %v", got)
	}
}

func TestGreedy_RepresentativeIsEarliest(t *testing.T) {
	cands := []viewspace.ViewSpace{
		dims(7, "A"),
		dims(3, "A"),
		dims(5, "A"),
	}

	groups, err := Greedy(context.Background(), cands, field.Catalog{}, similarity.Default(), 0.85, 0)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}
	if len(groups) != 1 || groups[0].Representative.Index != 7 {
		t.Fatalf("first-assigned member should represent the group, got %v", groupIndices(groups))
	}
}

func TestGreedy_DuplicateIndexFails(t *testing.T) {
	cands := []viewspace.ViewSpace{dims(0, "A"), dims(0, "B")}

	if _, err := Greedy(context.Background(), cands, field.Catalog{}, similarity.Default(), 0.85, 0); err == nil {
		t.Fatal("expected error for duplicate index")
	}
}

func TestGreedy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Greedy(ctx, []viewspace.ViewSpace{dims(0, "A")}, field.Catalog{}, similarity.Default(), 0.85, 0); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGreedy_Empty(t *testing.T) {
	groups, err := Greedy(context.Background(), nil, field.Catalog{}, similarity.Default(), 0.85, 3)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
