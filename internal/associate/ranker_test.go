package associate

import (
	"testing"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

func sub(d []string, m []string) viewspace.Subspace {
	return viewspace.Subspace{Dimensions: d, Measures: m}
}

func TestRelate_ExcludesFocusComposition(t *testing.T) {
	r := NewRanker(similarity.Default(), DefaultConfig())
	focus := viewspace.ViewSpace{Index: 0, Dimensions: []string{"A", "B"}, Measures: []string{"M"}}
	subspaces := []viewspace.Subspace{
		sub([]string{"B", "A"}, []string{"M"}), // same composition, reordered
		sub([]string{"A"}, []string{"M"}),
		sub([]string{"C"}, []string{"N"}),
	}

	results := r.Relate(focus, subspaces, field.Catalog{})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if viewspace.SameFields(focus, sub(res.Dimensions, res.Measures)) {
			t.Fatalf("focus composition leaked into results: %+v", res)
		}
	}
}

func TestRelate_SortedDescendingStable(t *testing.T) {
	r := NewRanker(similarity.Default(), Config{InterestWeight: 0})
	focus := viewspace.ViewSpace{Dimensions: []string{"A"}, Measures: []string{"M"}}
	subspaces := []viewspace.Subspace{
		sub([]string{"X"}, []string{"Y"}),      // unrelated
		sub([]string{"A", "B"}, []string{"M"}), // strong
		sub([]string{"Z"}, []string{"W"}),      // unrelated, ties with position 0
		sub([]string{"A"}, []string{"N"}),      // partial
	}

	results := r.Relate(focus, subspaces, field.Catalog{})

	order := make([]int, len(results))
	for i, res := range results {
		order[i] = res.Position
	}
	want := []int{1, 3, 0, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not descending at %d: %+v", i, results)
		}
	}
}

func TestRelate_InterestBreaksOverlapTies(t *testing.T) {
	fields := field.NewCatalog([]field.Summary{
		{ID: "S", Distribution: []field.Bin{{Member: "a", Count: 98}, {Member: "b", Count: 1}, {Member: "c", Count: 1}}},
		{ID: "U", Distribution: []field.Bin{{Member: "a", Count: 1}, {Member: "b", Count: 1}, {Member: "c", Count: 1}}},
	}, nil)
	r := NewRanker(similarity.Default(), Config{InterestWeight: 1})
	focus := viewspace.ViewSpace{Dimensions: []string{"A"}}

	results := r.Relate(focus, []viewspace.Subspace{sub([]string{"U"}, nil), sub([]string{"S"}, nil)}, fields)

	if results[0].Position != 1 {
		t.Fatalf("skewed field subspace should rank first, got %+v", results)
	}
	if results[0].Interest <= results[1].Interest {
		t.Errorf("interest not reflected: %+v", results)
	}
}

func TestRelate_Limit(t *testing.T) {
	r := NewRanker(nil, Config{Limit: 1})
	focus := viewspace.ViewSpace{Dimensions: []string{"A"}}

	results := r.Relate(focus, []viewspace.Subspace{sub([]string{"B"}, nil), sub([]string{"C"}, nil)}, field.Catalog{})
	if len(results) != 1 {
		t.Fatalf("expected limit 1, got %d", len(results))
	}
}

func TestResolveAndLocate(t *testing.T) {
	candidates := []viewspace.ViewSpace{
		{Index: 0, Dimensions: []string{"A"}},
		{Index: 1, Dimensions: []string{"B"}},
		{Index: 2, Dimensions: []string{"B"}},
	}
	results := []Result{
		{Dimensions: []string{"B"}},
		{Dimensions: []string{"Q"}},
	}

	resolved := Resolve(results, candidates)

	if resolved[0].ViewIndex != 1 {
		t.Errorf("expected first matching candidate 1, got %d", resolved[0].ViewIndex)
	}
	if resolved[1].ViewIndex != -1 {
		t.Errorf("unmatched result should keep -1, got %d", resolved[1].ViewIndex)
	}

	navigable := []viewspace.ViewSpace{candidates[0], candidates[2]}
	if pos := Locate(navigable, 2); pos != 1 {
		t.Errorf("expected position 1, got %d", pos)
	}
	if pos := Locate(navigable, 1); pos != -1 {
		t.Errorf("pruned candidate should not be found, got %d", pos)
	}
}
