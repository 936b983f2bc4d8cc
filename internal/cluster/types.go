package cluster

import (
	"context"
	"time"

	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region config
// Config holds clustering thresholds and remote call limits.
type Config struct {
	Threshold     float64       // similarity a candidate must exceed to join a group
	RemoteTimeout time.Duration // per-attempt deadline for the remote service
	RemoteRetries int           // extra attempts after the first remote failure
}

// DefaultConfig returns the standard clustering configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.85,
		RemoteTimeout: 10 * time.Second,
		RemoteRetries: 1,
	}
}

// #endregion config

// #region mode
// Mode records which path produced a clustering result.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeRemote   Mode = "remote"
	ModeFallback Mode = "fallback" // remote requested, local result used
)

// #endregion mode

// #region remote
// Remote is a clustering service that partitions candidates on our behalf.
// Responses are index-only; the engine resolves them against the request.
type Remote interface {
	Cluster(ctx context.Context, candidates []viewspace.ViewSpace, maxGroups int) ([]viewspace.GroupRef, error)
}

// #endregion remote

// #region result
// Result is the outcome of one clustering call.
type Result struct {
	Groups    []viewspace.ClusterGroup
	Mode      Mode
	Attempts  int   // remote attempts made
	RemoteErr error // last remote failure when Mode is ModeFallback
}

// #endregion result
