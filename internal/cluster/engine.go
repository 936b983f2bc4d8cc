package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/gate"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// ErrNoRemote is reported when remote clustering is requested without a client.
var ErrNoRemote = errors.New("no remote clustering service configured")

// #region engine
// Engine clusters candidates locally or through a remote service.
type Engine struct {
	scorer *similarity.Scorer
	remote Remote
	config Config
}

// NewEngine creates an engine. remote may be nil.
func NewEngine(scorer *similarity.Scorer, remote Remote, config Config) *Engine {
	if scorer == nil {
		scorer = similarity.Default()
	}
	return &Engine{scorer: scorer, remote: remote, config: config}
}

// Scorer returns the similarity scorer used for local clustering.
func (e *Engine) Scorer() *similarity.Scorer {
	return e.scorer
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// #endregion engine

// #region cluster
// Cluster partitions candidates into groups. With useRemote the remote
// service is authoritative; when it fails, times out, or returns a
// malformed response, the engine falls back to local clustering. The
// candidates slice is read, never modified.
func (e *Engine) Cluster(
	ctx context.Context,
	candidates []viewspace.ViewSpace,
	fields field.Catalog,
	maxGroups int,
	useRemote bool,
) (Result, error) {
	if !useRemote {
		groups, err := Greedy(ctx, candidates, fields, e.scorer, e.config.Threshold, maxGroups)
		if err != nil {
			return Result{Mode: ModeLocal}, err
		}
		return Result{Groups: groups, Mode: ModeLocal}, nil
	}

	groups, attempts, remoteErr := e.clusterRemote(ctx, candidates, maxGroups)
	if remoteErr == nil {
		return Result{Groups: groups, Mode: ModeRemote, Attempts: attempts}, nil
	}

	log.Printf("[CLUSTER] remote failed after %d attempts, falling back to local: %v", attempts, remoteErr)
	groups, err := Greedy(ctx, candidates, fields, e.scorer, e.config.Threshold, maxGroups)
	res := Result{Mode: ModeFallback, Attempts: attempts, RemoteErr: remoteErr}
	if err != nil {
		return res, fmt.Errorf("local fallback: %w", err)
	}
	res.Groups = groups
	return res, nil
}

// #endregion cluster

// #region remote
// clusterRemote calls the remote service with per-attempt timeouts. A
// rejected response is not retried: the service answered, just wrongly.
func (e *Engine) clusterRemote(ctx context.Context, candidates []viewspace.ViewSpace, maxGroups int) ([]viewspace.ClusterGroup, int, error) {
	if e.remote == nil {
		return nil, 0, ErrNoRemote
	}

	var lastErr error
	attempts := 0
	for attempts <= e.config.RemoteRetries {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts++

		callCtx, cancel := e.attemptContext(ctx)
		refs, err := e.remote.Cluster(callCtx, candidates, maxGroups)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempts, err)
			log.Printf("[CLUSTER] remote attempt %d failed: %v", attempts, err)
			continue
		}

		decision := gate.CheckGroups(candidates, refs, maxGroups)
		if decision.Vetoed {
			return nil, attempts, fmt.Errorf("remote response rejected: %s", decision.Reason)
		}
		return decision.Groups, attempts, nil
	}
	return nil, attempts, lastErr
}

func (e *Engine) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.RemoteTimeout > 0 {
		return context.WithTimeout(ctx, e.config.RemoteTimeout)
	}
	return context.WithCancel(ctx)
}

// #endregion remote
