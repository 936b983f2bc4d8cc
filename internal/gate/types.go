package gate

import "github.com/danielpatrickdp/viewspace/internal/viewspace"

// #region veto-type
// VetoType enumerates the ways a remote clustering response can be malformed.
type VetoType string

const (
	VetoUnknownCandidate     VetoType = "unknown_candidate"
	VetoDuplicateMember      VetoType = "duplicate_member"
	VetoMissingCandidate     VetoType = "missing_candidate"
	VetoEmptyGroup           VetoType = "empty_group"
	VetoOrphanRepresentative VetoType = "orphan_representative"
	VetoGroupCap             VetoType = "group_cap"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-decision
// Decision is the output of checking a remote response.
type Decision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal
	Groups      []viewspace.ClusterGroup // resolved groups, nil when rejected
}

// #endregion gate-decision
