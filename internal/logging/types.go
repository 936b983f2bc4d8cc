package logging

import "time"

// #region run-entry
// RunEntry is a single row in the cluster_runs table.
type RunEntry struct {
	SessionID   string
	Generation  uint64
	Mode        string // "local" | "remote" | "fallback"
	Attempts    int
	MaxGroups   int
	Candidates  int
	Groups      int
	Outcome     string // "applied" | "stale" | "failed"
	Reason      string
	MetricsJSON string
	RemoteError string
	CreatedAt   time.Time
}

// #endregion run-entry

// #region run-record
// RunRecord captures the eval inputs of one clustering run. Serialized as
// JSON into cluster_runs.metrics_json so a run can be compared offline.
type RunRecord struct {
	Threshold float64 `json:"threshold"`
	UseRemote bool    `json:"use_remote"`

	Weights RunRecordWeights `json:"weights"`

	// Eval output
	EvalPassed bool               `json:"eval_passed"`
	EvalReason string             `json:"eval_reason"`
	Metrics    map[string]float64 `json:"metrics"`

	Representatives []int `json:"representatives"`
}

// RunRecordWeights captures the scorer weights active at run time.
type RunRecordWeights struct {
	Dimension float64 `json:"dimension"`
	Measure   float64 `json:"measure"`
	Profile   float64 `json:"profile"`
}

// #endregion run-record
