package similarity

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region weights
// Weights balances the three similarity terms. They must sum to 1.
type Weights struct {
	Dimension float64 `json:"dimension" yaml:"dimension"`
	Measure   float64 `json:"measure" yaml:"measure"`
	Profile   float64 `json:"profile" yaml:"profile"`
}

// DefaultWeights returns equal thirds.
func DefaultWeights() Weights {
	return Weights{Dimension: 1.0 / 3, Measure: 1.0 / 3, Profile: 1.0 / 3}
}

// Validate checks that all weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Dimension < 0 || w.Measure < 0 || w.Profile < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Dimension + w.Measure + w.Profile
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// #endregion weights

// #region scorer
// Scorer computes how alike two candidates are. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with validated weights.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Default returns a scorer with equal weights.
func Default() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns a similarity in [0, 1], 1 meaning identical composition.
func (s *Scorer) Score(a, b viewspace.Fielded, fields field.Catalog) float64 {
	aDims := viewspace.NewFieldSet(a.FieldDimensions())
	bDims := viewspace.NewFieldSet(b.FieldDimensions())
	aMeas := viewspace.NewFieldSet(a.FieldMeasures())
	bMeas := viewspace.NewFieldSet(b.FieldMeasures())

	dimTerm := viewspace.Jaccard(aDims, bDims)
	measTerm := viewspace.Jaccard(aMeas, bMeas)
	profTerm := profileTerm(aDims, bDims, aMeas, bMeas, fields)

	score := s.weights.Dimension*dimTerm + s.weights.Measure*measTerm + s.weights.Profile*profTerm
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// #endregion scorer

// #region profile-term
// profileTerm averages a per-field match over the union of both candidates'
// fields. A field present on both sides matches fully; otherwise it takes
// its best statistical match among the other side's fields of the same role.
func profileTerm(aDims, bDims, aMeas, bMeas viewspace.FieldSet, fields field.Catalog) float64 {
	union := len(unionOf(aDims, bDims)) + len(unionOf(aMeas, bMeas))
	if union == 0 {
		return 1
	}
	var total float64
	total += roleMatch(aDims, bDims, fields)
	total += roleMatch(aMeas, bMeas, fields)
	return total / float64(union)
}

// roleMatch sums match values for every field in a∪b of one role.
func roleMatch(a, b viewspace.FieldSet, fields field.Catalog) float64 {
	var total float64
	for id := range a {
		if b.Has(id) {
			total++
			continue
		}
		total += bestMatch(id, b, fields)
	}
	for id := range b {
		if a.Has(id) {
			continue
		}
		total += bestMatch(id, a, fields)
	}
	return total
}

func bestMatch(id string, others viewspace.FieldSet, fields field.Catalog) float64 {
	src, ok := fields.Lookup(id)
	if !ok {
		return 0
	}
	best := 0.0
	for other := range others {
		dst, ok := fields.Lookup(other)
		if !ok {
			continue
		}
		if sim := field.ProfileSimilarity(src, dst); sim > best {
			best = sim
		}
	}
	return best
}

func unionOf(a, b viewspace.FieldSet) viewspace.FieldSet {
	out := make(viewspace.FieldSet, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

// #endregion profile-term
