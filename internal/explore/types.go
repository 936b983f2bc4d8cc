package explore

import (
	"errors"

	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/eval"
	"github.com/danielpatrickdp/viewspace/internal/likes"
	"github.com/danielpatrickdp/viewspace/internal/logging"
	"github.com/danielpatrickdp/viewspace/internal/store"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

var (
	// ErrClusteringFailed wraps a clustering call whose local path failed.
	ErrClusteringFailed = errors.New("clustering failed")
	// ErrStaleResult marks a clustering result superseded by a newer call
	// or a new ingestion. It is recorded, never surfaced.
	ErrStaleResult = errors.New("stale clustering result")
)

// #region data-source
// DataSource is the ingested data: a label and the rendered candidates in
// generation order.
type DataSource interface {
	Label() string
	Candidates() []viewspace.ViewSpace
}

// #endregion data-source

// #region status
// StatusCode summarizes the health of the last clustering call.
type StatusCode string

const (
	StatusOK       StatusCode = "ok"
	StatusFallback StatusCode = "fallback" // remote failed, local result shown
	StatusDegraded StatusCode = "degraded" // clustering failed, previous list shown
)

// Status is the advisory shown next to the page list.
type Status struct {
	Code    StatusCode `json:"code"`
	Message string     `json:"message,omitempty"`
}

// #endregion status

// #region state
// State is a copy of the exploration state. Mutating it has no effect on
// the store.
type State struct {
	Source          string                   `json:"source"`
	SessionID       string                   `json:"session_id"`
	Generation      uint64                   `json:"generation"`
	Candidates      []viewspace.ViewSpace    `json:"candidates"`
	ViewSpaces      []viewspace.ViewSpace    `json:"view_spaces"`
	Groups          []viewspace.ClusterGroup `json:"groups,omitempty"`
	CurrentPage     int                      `json:"current_page"`
	Likes           []likes.Entry            `json:"likes"`
	Loading         bool                     `json:"loading"`
	Focus           *viewspace.ViewSpace     `json:"focus,omitempty"`
	AssociationOpen bool                     `json:"association_open"`
	Status          Status                   `json:"status"`
	Mode            cluster.Mode             `json:"mode,omitempty"`
}

// #endregion state

// #region run-report
// RunReport describes how one ClusterMeasures call ended.
type RunReport struct {
	Generation uint64           `json:"generation"`
	Applied    bool             `json:"applied"`
	Stale      bool             `json:"stale"`
	Mode       cluster.Mode     `json:"mode"`
	Attempts   int              `json:"attempts"`
	Groups     int              `json:"groups"`
	Eval       *eval.EvalResult `json:"eval,omitempty"`
}

// #endregion run-report

// #region options
// SessionStore opens a persisted session for each ingestion.
type SessionStore interface {
	CreateSession(label string, candidates int) (store.Session, error)
}

// LikeStore persists like toggles.
type LikeStore interface {
	SaveLike(sessionID string, entry likes.Entry) error
	DeleteLike(sessionID string, pageIndex int) error
}

// RunRecorder appends clustering runs to a log.
type RunRecorder interface {
	RecordRun(entry logging.RunEntry) error
}

// Options are optional collaborators. Their failures are logged and never
// change the outcome of an operation.
type Options struct {
	Sessions SessionStore
	Likes    LikeStore
	Runs     RunRecorder
	Eval     eval.EvalConfig
}

// #endregion options
