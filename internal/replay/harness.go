package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/viewspace/internal/associate"
	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/eval"
	"github.com/danielpatrickdp/viewspace/internal/explore"
	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
)

// #region types
// Step is a single recorded user action to replay against a session.
type Step struct {
	StepID string
	Action string // "cluster" | "next" | "last" | "goto" | "like" | "focus" | "select_association"
	Arg    int    // page for goto (1-based), candidate index for focus and select_association, max groups for cluster
}

// ReplayConfig bundles clustering, association and eval configs for a replay run.
type ReplayConfig struct {
	Weights     similarity.Weights
	Cluster     cluster.Config
	Association associate.Config
	EvalConfig  eval.EvalConfig
	MaxGroups   int // used by cluster steps with Arg 0
}

// DefaultReplayConfig returns the defaults every stage uses in production.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Weights:     similarity.DefaultWeights(),
		Cluster:     cluster.DefaultConfig(),
		Association: associate.DefaultConfig(),
		EvalConfig:  eval.DefaultEvalConfig(),
		MaxGroups:   10,
	}
}

// ReplayResult captures the session state after one step.
type ReplayResult struct {
	StepID string
	Action string
	Reason string // set when the step was rejected

	Page  int // current page after the step
	Pages int
	Liked bool // like flag of the current page
	Likes int

	// Cluster steps only
	Report *explore.RunReport

	// Association view indices ranked for the current focus; -1 for
	// subspaces with no navigable candidate.
	Associations []int
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps  int
	Clusterings int
	Navigations int
	Likes       int
	Rejected    int
	FinalPage   int
	FinalPages  int
}

// #endregion types

// #region replay
// Replay loads the bundle into a fresh in-memory session and applies each
// step in order. Clustering always runs locally. A malformed step is
// recorded as rejected and the replay carries on; an unknown action or a
// failed clustering aborts it.
func Replay(ctx context.Context, bundle *ingest.Bundle, steps []Step, config ReplayConfig) ([]ReplayResult, error) {
	scorer, err := similarity.NewScorer(config.Weights)
	if err != nil {
		return nil, fmt.Errorf("replay weights: %w", err)
	}
	engine := cluster.NewEngine(scorer, nil, config.Cluster)
	ranker := associate.NewRanker(scorer, config.Association)
	st := explore.NewStore(engine, ranker, explore.Options{Eval: config.EvalConfig})
	st.Init(bundle, bundle.Catalog(), bundle.Subspaces)

	results := make([]ReplayResult, 0, len(steps))
	for _, step := range steps {
		res := ReplayResult{StepID: step.StepID, Action: step.Action}

		switch step.Action {
		case "cluster":
			maxGroups := step.Arg
			if maxGroups == 0 {
				maxGroups = config.MaxGroups
			}
			report, err := st.ClusterMeasures(ctx, maxGroups, false)
			if err != nil {
				return results, fmt.Errorf("step %s: %w", step.StepID, err)
			}
			res.Report = &report
		case "next":
			st.NextPage()
		case "last":
			st.LastPage()
		case "goto":
			st.GoToDisplayPage(fmt.Sprintf("%d", step.Arg))
		case "like":
			if _, ok := st.LikeCurrent(); !ok {
				res.Reason = "no pages to like"
			}
		case "focus":
			if !st.SelectFocus(step.Arg) {
				res.Reason = fmt.Sprintf("no candidate with index %d", step.Arg)
			}
		case "select_association":
			if !st.SelectAssociation(step.Arg) {
				res.Reason = fmt.Sprintf("candidate %d is not on any page", step.Arg)
			}
		default:
			return results, fmt.Errorf("step %s: unknown action %q", step.StepID, step.Action)
		}

		snap := st.Snapshot()
		res.Page = snap.CurrentPage
		res.Pages = len(snap.ViewSpaces)
		res.Liked = st.IsLiked(snap.CurrentPage)
		res.Likes = len(snap.Likes)
		for _, a := range st.Associations() {
			res.Associations = append(res.Associations, a.ViewIndex)
		}
		results = append(results, res)
	}

	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Reason != "" {
			s.Rejected++
			continue
		}
		switch r.Action {
		case "cluster":
			s.Clusterings++
		case "next", "last", "goto", "select_association":
			s.Navigations++
		case "like":
			s.Likes++
		}
	}
	if n := len(results); n > 0 {
		s.FinalPage = results[n-1].Page
		s.FinalPages = results[n-1].Pages
	}
	return s
}

// #endregion replay
