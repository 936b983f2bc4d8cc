package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Bundle          json.RawMessage         `json:"bundle"`
	Config          FixtureConfig           `json:"config"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureStep mirrors replay.Step with JSON tags.
type FixtureStep struct {
	StepID string `json:"step_id"`
	Action string `json:"action"`
	Arg    int    `json:"arg"`
}

// FixtureExpectedResult captures the expected state after a step. Nil
// fields are not checked.
type FixtureExpectedResult struct {
	StepID       string `json:"step_id"`
	Page         *int   `json:"page,omitempty"`
	Pages        *int   `json:"pages,omitempty"`
	Liked        *bool  `json:"liked,omitempty"`
	Rejected     *bool  `json:"rejected,omitempty"`
	Associations []int  `json:"associations,omitempty"`
}

// FixtureConfig bundles all sub-configs for a replay run. Zero values
// keep the defaults.
type FixtureConfig struct {
	Weights        *similarity.Weights `json:"weights,omitempty"`
	Threshold      float64             `json:"threshold"`
	MaxGroups      int                 `json:"max_groups"`
	InterestWeight *float64            `json:"interest_weight,omitempty"`
	Limit          int                 `json:"limit"`
	MinCohesion    *float64            `json:"min_cohesion,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToBundle decodes the embedded bundle, deriving candidates when it has none.
func (f *Fixture) ToBundle() (*ingest.Bundle, error) {
	if len(f.Bundle) == 0 {
		return nil, fmt.Errorf("fixture has no bundle")
	}
	b, err := ingest.Decode(bytes.NewReader(f.Bundle), ".json")
	if err != nil {
		return nil, fmt.Errorf("fixture bundle: %w", err)
	}
	return b, nil
}

// ToSteps converts fixture steps to domain steps.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = Step{StepID: s.StepID, Action: s.Action, Arg: s.Arg}
	}
	return steps
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()
	if fc.Weights != nil {
		cfg.Weights = *fc.Weights
	}
	if fc.Threshold > 0 {
		cfg.Cluster.Threshold = fc.Threshold
	}
	if fc.MaxGroups > 0 {
		cfg.MaxGroups = fc.MaxGroups
	}
	if fc.InterestWeight != nil {
		cfg.Association.InterestWeight = *fc.InterestWeight
	}
	if fc.Limit > 0 {
		cfg.Association.Limit = fc.Limit
	}
	if fc.MinCohesion != nil {
		cfg.EvalConfig.MinCohesion = *fc.MinCohesion
	}
	// replay never talks to a remote service
	cfg.Cluster.RemoteTimeout = time.Second
	cfg.Cluster.RemoteRetries = 0
	return cfg
}

// #endregion fixture-loader

// #region fixture-check

// Mismatch describes one expectation a replay did not meet.
type Mismatch struct {
	StepID string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %s: %s want %s, got %s", m.StepID, m.Field, m.Want, m.Got)
}

// Check compares replay results against the fixture's expectations.
func (f *Fixture) Check(results []ReplayResult) []Mismatch {
	var out []Mismatch
	if len(results) != len(f.ExpectedResults) {
		return []Mismatch{{Field: "steps", Want: fmt.Sprint(len(f.ExpectedResults)), Got: fmt.Sprint(len(results))}}
	}
	for i, exp := range f.ExpectedResults {
		got := results[i]
		if got.StepID != exp.StepID {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "step_id", Want: exp.StepID, Got: got.StepID})
			continue
		}
		if exp.Page != nil && *exp.Page != got.Page {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "page", Want: fmt.Sprint(*exp.Page), Got: fmt.Sprint(got.Page)})
		}
		if exp.Pages != nil && *exp.Pages != got.Pages {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "pages", Want: fmt.Sprint(*exp.Pages), Got: fmt.Sprint(got.Pages)})
		}
		if exp.Liked != nil && *exp.Liked != got.Liked {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "liked", Want: fmt.Sprint(*exp.Liked), Got: fmt.Sprint(got.Liked)})
		}
		if exp.Rejected != nil && *exp.Rejected != (got.Reason != "") {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "rejected", Want: fmt.Sprint(*exp.Rejected), Got: fmt.Sprint(got.Reason != "")})
		}
		if exp.Associations != nil && fmt.Sprint(exp.Associations) != fmt.Sprint(got.Associations) {
			out = append(out, Mismatch{StepID: exp.StepID, Field: "associations", Want: fmt.Sprint(exp.Associations), Got: fmt.Sprint(got.Associations)})
		}
	}
	return out
}

// #endregion fixture-check
