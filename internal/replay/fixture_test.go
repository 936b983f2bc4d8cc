package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// #region fixture-tests

// TestFixture_ExplorationSession loads the exploration_session fixture,
// runs Replay() and compares each step against the expected state. If
// scoring, clustering or ranking change, this catches drift.
func TestFixture_ExplorationSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "exploration_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	bundle, err := f.ToBundle()
	if err != nil {
		t.Fatalf("ToBundle: %v", err)
	}
	results, err := Replay(context.Background(), bundle, f.ToSteps(), f.Config.ToReplayConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	for _, m := range f.Check(results) {
		t.Error(m.String())
	}

	summary := Summarize(results)
	if summary.Clusterings != 1 || summary.Rejected != 1 || summary.Likes != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.FinalPage != 2 || summary.FinalPages != 3 {
		t.Errorf("expected to finish on page 2 of 3, got %d of %d", summary.FinalPage, summary.FinalPages)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Error("expected error for missing fixture")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"steps": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFixture_NoBundle(t *testing.T) {
	f := &Fixture{}
	if _, err := f.ToBundle(); err == nil {
		t.Error("expected error for fixture without bundle")
	}
}

func TestFixtureConfig_Overrides(t *testing.T) {
	w := 0.5
	fc := FixtureConfig{Threshold: 0.6, MaxGroups: 3, InterestWeight: &w, Limit: 4}
	cfg := fc.ToReplayConfig()
	if cfg.Cluster.Threshold != 0.6 || cfg.MaxGroups != 3 {
		t.Errorf("cluster overrides not applied: %+v", cfg)
	}
	if cfg.Association.InterestWeight != 0.5 || cfg.Association.Limit != 4 {
		t.Errorf("association overrides not applied: %+v", cfg.Association)
	}
	if cfg.Cluster.RemoteRetries != 0 {
		t.Error("replay should never retry a remote")
	}

	def := (&FixtureConfig{}).ToReplayConfig()
	if def.Cluster.Threshold != DefaultReplayConfig().Cluster.Threshold {
		t.Error("zero threshold should keep the default")
	}
}

func TestCheck_ReportsMismatches(t *testing.T) {
	page := 1
	liked := true
	f := &Fixture{ExpectedResults: []FixtureExpectedResult{
		{StepID: "s1", Page: &page, Liked: &liked, Associations: []int{2}},
	}}

	got := f.Check([]ReplayResult{{StepID: "s1", Page: 0, Associations: []int{2}}})
	if len(got) != 2 {
		t.Fatalf("expected page and liked mismatches, got %v", got)
	}
	if !strings.Contains(got[0].String(), "page want 1, got 0") {
		t.Errorf("unexpected mismatch text: %s", got[0])
	}

	if got := f.Check(nil); len(got) != 1 || got[0].Field != "steps" {
		t.Errorf("expected step count mismatch, got %v", got)
	}
}

// #endregion fixture-tests
