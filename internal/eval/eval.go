package eval

import (
	"fmt"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region eval-harness
// EvalHarness measures the quality of a clustering result.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run computes group count, compression, cohesion and singleton ratio.
// Group count and compression are informational and never fail.
func (h *EvalHarness) Run(groups []viewspace.ClusterGroup, fields field.Catalog, scorer *similarity.Scorer) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	members := 0
	singletons := 0
	var cohesionSum float64
	cohesionN := 0
	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		members += len(g.Members)
		if len(g.Members) == 1 {
			singletons++
		}
		for _, m := range g.Members[1:] {
			cohesionSum += scorer.Score(m, g.Representative, fields)
			cohesionN++
		}
	}

	// 1. Group count
	metrics = append(metrics, EvalMetric{Name: "group_count", Value: float64(len(groups)), Pass: true})

	// 2. Compression: candidates per page
	compression := 0.0
	if len(groups) > 0 {
		compression = float64(members) / float64(len(groups))
	}
	metrics = append(metrics, EvalMetric{Name: "compression", Value: compression, Pass: true})

	// 3. Cohesion: mean similarity of non-representative members to their representative
	cohesion := 1.0
	if cohesionN > 0 {
		cohesion = cohesionSum / float64(cohesionN)
	}
	cohesionPass := cohesion >= h.config.MinCohesion
	metrics = append(metrics, EvalMetric{Name: "mean_cohesion", Value: cohesion, Pass: cohesionPass})
	if !cohesionPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("mean cohesion %.4f below %.4f", cohesion, h.config.MinCohesion))
	}

	// 4. Singleton ratio
	singletonRatio := 0.0
	if len(groups) > 0 {
		singletonRatio = float64(singletons) / float64(len(groups))
	}
	singletonPass := singletonRatio <= h.config.MaxSingletonRatio
	metrics = append(metrics, EvalMetric{Name: "singleton_ratio", Value: singletonRatio, Pass: singletonPass})
	if !singletonPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("singleton ratio %.4f exceeds %.4f", singletonRatio, h.config.MaxSingletonRatio))
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
