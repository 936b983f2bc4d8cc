package associate

import (
	"sort"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region config
// Config weights the two relevance terms and bounds the result size.
type Config struct {
	InterestWeight float64 // share of the score taken by field interestingness
	Limit          int     // max results; 0 means unlimited
}

// DefaultConfig returns the standard ranking configuration.
func DefaultConfig() Config {
	return Config{InterestWeight: 0.3}
}

// #endregion config

// #region result
// Result is one ranked subspace related to the focus candidate.
type Result struct {
	Position   int      `json:"position"` // index in the subspace list
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
	Score      float64  `json:"score"`
	Overlap    float64  `json:"overlap"`
	Interest   float64  `json:"interest"`
	ViewIndex  int      `json:"view_index"` // matching candidate index, -1 if none
}

// #endregion result

// #region ranker
// Ranker orders subspaces by relevance to a focus candidate.
type Ranker struct {
	scorer *similarity.Scorer
	config Config
}

// NewRanker creates a ranker. A nil scorer uses equal weights.
func NewRanker(scorer *similarity.Scorer, config Config) *Ranker {
	if scorer == nil {
		scorer = similarity.Default()
	}
	if config.InterestWeight < 0 {
		config.InterestWeight = 0
	}
	if config.InterestWeight > 1 {
		config.InterestWeight = 1
	}
	return &Ranker{scorer: scorer, config: config}
}

// Relate scores every subspace against focus and returns them best first.
// Subspaces with the focus candidate's exact composition are excluded.
// Ties keep the subspace list order.
func (r *Ranker) Relate(focus viewspace.Fielded, subspaces []viewspace.Subspace, fields field.Catalog) []Result {
	results := make([]Result, 0, len(subspaces))
	for i, sub := range subspaces {
		if viewspace.SameFields(focus, sub) {
			continue
		}
		overlap := r.scorer.Score(focus, sub, fields)
		interest := interestOf(sub, fields)
		score := (1-r.config.InterestWeight)*overlap + r.config.InterestWeight*interest
		results = append(results, Result{
			Position:   i,
			Dimensions: append([]string(nil), sub.Dimensions...),
			Measures:   append([]string(nil), sub.Measures...),
			Score:      score,
			Overlap:    overlap,
			Interest:   interest,
			ViewIndex:  -1,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if r.config.Limit > 0 && len(results) > r.config.Limit {
		results = results[:r.config.Limit]
	}
	return results
}

// interestOf is the mean interestingness of a subspace's known fields.
func interestOf(sub viewspace.Subspace, fields field.Catalog) float64 {
	var total float64
	n := 0
	for _, ids := range [][]string{sub.Dimensions, sub.Measures} {
		for _, id := range ids {
			n++
			if s, ok := fields.Lookup(id); ok {
				total += s.Interestingness()
			}
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// #endregion ranker

// #region resolve
// Resolve fills ViewIndex for each result from the first candidate with
// the same composition. Results without a candidate keep -1.
func Resolve(results []Result, candidates []viewspace.ViewSpace) []Result {
	out := make([]Result, len(results))
	for i, res := range results {
		res.ViewIndex = -1
		sub := viewspace.Subspace{Dimensions: res.Dimensions, Measures: res.Measures}
		for _, c := range candidates {
			if viewspace.SameFields(c, sub) {
				res.ViewIndex = c.Index
				break
			}
		}
		out[i] = res
	}
	return out
}

// Locate returns the position of the candidate with the given index in a
// navigable list, or -1 if clustering pruned it.
func Locate(list []viewspace.ViewSpace, index int) int {
	for pos, v := range list {
		if v.Index == index {
			return pos
		}
	}
	return -1
}

// #endregion resolve
