package cluster

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// ctxCheckEvery bounds how many candidates are scored between context checks.
const ctxCheckEvery = 64

// #region greedy
// Greedy partitions candidates into groups of near-duplicates.
//
// Candidates are visited in input order. Each one joins the group whose
// representative it is most similar to, provided the similarity exceeds
// threshold; otherwise it opens a new group and becomes its representative.
// When maxGroups > 0 and that many groups exist, a non-matching candidate
// joins the closest group instead. No candidate is ever dropped.
//
// The result depends on input order and is not globally optimal: there is
// no exchange step once a candidate is placed.
func Greedy(
	ctx context.Context,
	candidates []viewspace.ViewSpace,
	fields field.Catalog,
	scorer *similarity.Scorer,
	threshold float64,
	maxGroups int,
) ([]viewspace.ClusterGroup, error) {
	seen := make(map[int]bool, len(candidates))
	groups := make([]viewspace.ClusterGroup, 0)

	for i, c := range candidates {
		if seen[c.Index] {
			return nil, fmt.Errorf("duplicate candidate index %d", c.Index)
		}
		seen[c.Index] = true

		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("greedy cluster: %w", err)
			}
		}

		best, bestSim := -1, -1.0
		for gi := range groups {
			sim := scorer.Score(c, groups[gi].Representative, fields)
			if sim > bestSim {
				best, bestSim = gi, sim
			}
		}

		switch {
		case best >= 0 && bestSim > threshold:
			groups[best].Members = append(groups[best].Members, c)
		case maxGroups > 0 && len(groups) >= maxGroups:
			groups[best].Members = append(groups[best].Members, c)
		default:
			groups = append(groups, viewspace.ClusterGroup{
				Representative: c,
				Members:        []viewspace.ViewSpace{c},
			})
		}
	}

	return groups, nil
}

// #endregion greedy
