package eval

// #region eval-config
// EvalConfig holds thresholds for cluster quality checks.
type EvalConfig struct {
	MinCohesion       float64 // fail if mean member-to-representative similarity drops below this
	MaxSingletonRatio float64 // fail if more than this share of groups have one member
}

// DefaultEvalConfig returns sensible defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinCohesion:       0.5,
		MaxSingletonRatio: 1.0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a cluster quality check.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// Metric returns the named metric value.
func (r EvalResult) Metric(name string) (float64, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// #endregion eval-result
