package viewspace

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSchemaClone_IsDeep(t *testing.T) {
	orig := Schema{
		"mark":     "bar",
		"encoding": map[string]any{"x": map[string]any{"field": "a"}},
		"fields":   []any{"a", "b"},
	}
	cp := orig.Clone()

	orig["encoding"].(map[string]any)["x"].(map[string]any)["field"] = "changed"
	orig["fields"].([]any)[0] = "changed"

	if cp["encoding"].(map[string]any)["x"].(map[string]any)["field"] != "a" {
		t.Error("nested map was shared with the clone")
	}
	if cp["fields"].([]any)[0] != "a" {
		t.Error("nested slice was shared with the clone")
	}
	if Schema(nil).Clone() != nil {
		t.Error("clone of nil schema should be nil")
	}
}

func TestSameFields_IgnoresOrder(t *testing.T) {
	a := ViewSpace{Dimensions: []string{"A", "B"}, Measures: []string{"M"}}
	b := Subspace{Dimensions: []string{"B", "A"}, Measures: []string{"M"}}
	c := Subspace{Dimensions: []string{"A", "B"}, Measures: []string{"N"}}

	if !SameFields(a, b) {
		t.Error("expected same composition regardless of order")
	}
	if SameFields(a, c) {
		t.Error("different measures must not be the same composition")
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard(NewFieldSet(nil), NewFieldSet(nil)); got != 1 {
		t.Errorf("two empty sets: expected 1, got %f", got)
	}
	if got := Jaccard(NewFieldSet([]string{"A", "B"}), NewFieldSet([]string{"B", "C"})); got != 1.0/3.0 {
		t.Errorf("expected 1/3, got %f", got)
	}
	if got := Jaccard(NewFieldSet([]string{"A"}), NewFieldSet(nil)); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestRepresentativesAndRefs(t *testing.T) {
	groups := []ClusterGroup{
		{Representative: ViewSpace{Index: 0}, Members: []ViewSpace{{Index: 0}, {Index: 1}}},
		{Representative: ViewSpace{Index: 2}, Members: []ViewSpace{{Index: 2}}},
	}
	reps := Representatives(groups)
	if len(reps) != 2 || reps[0].Index != 0 || reps[1].Index != 2 {
		t.Fatalf("unexpected representatives: %+v", reps)
	}
	refs := Refs(groups)
	if refs[0].Representative != 0 || len(refs[0].Members) != 2 || refs[0].Members[1] != 1 {
		t.Errorf("unexpected refs: %+v", refs)
	}
}

func TestSchemaUnmarshalYAML_PlainNestedMaps(t *testing.T) {
	var v ViewSpace
	doc := "index: 1\nschema:\n  mark: bar\n  encoding:\n    x: {field: origin}\n  layers:\n    - {mark: line}\n  bins:\n    1: low\n"
	if err := yaml.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	enc, ok := v.Schema["encoding"].(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any encoding, got %T", v.Schema["encoding"])
	}
	if _, ok := enc["x"].(map[string]any); !ok {
		t.Errorf("expected map[string]any channel, got %T", enc["x"])
	}
	layers, ok := v.Schema["layers"].([]any)
	if !ok || len(layers) != 1 {
		t.Fatalf("unexpected layers: %#v", v.Schema["layers"])
	}
	if _, ok := layers[0].(map[string]any); !ok {
		t.Errorf("expected map[string]any layer, got %T", layers[0])
	}
	if bins, ok := v.Schema["bins"].(map[string]any); !ok || bins["1"] != "low" {
		t.Errorf("expected string-keyed bins, got %#v", v.Schema["bins"])
	}
}

func TestViewSpaceClone_SharesNothing(t *testing.T) {
	orig := ViewSpace{Index: 3, Dimensions: []string{"A"}, Measures: []string{"M"}, Schema: Schema{"mark": "bar"}}
	cp := orig.Clone()
	cp.Dimensions[0] = "Z"
	cp.Measures[0] = "Z"
	cp.Schema["mark"] = "line"
	if orig.Dimensions[0] != "A" || orig.Measures[0] != "M" || orig.Schema["mark"] != "bar" {
		t.Errorf("clone shares state with the original: %+v", orig)
	}
	if CloneAll(nil) != nil {
		t.Error("clone of nil list should be nil")
	}
}
