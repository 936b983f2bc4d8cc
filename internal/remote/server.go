package remote

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region local-server
// LocalServer answers clustering calls with the greedy algorithm over a
// fixed field catalog.
type LocalServer struct {
	fields    field.Catalog
	scorer    *similarity.Scorer
	threshold float64
}

// NewLocalServer creates a server. A nil scorer uses equal weights.
func NewLocalServer(fields field.Catalog, scorer *similarity.Scorer, threshold float64) *LocalServer {
	if scorer == nil {
		scorer = similarity.Default()
	}
	return &LocalServer{fields: fields, scorer: scorer, threshold: threshold}
}

// Cluster implements ClusterServiceServer.
func (s *LocalServer) Cluster(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	candidates, maxGroups, err := DecodeRequest(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	groups, err := cluster.Greedy(ctx, candidates, s.fields, s.scorer, s.threshold, maxGroups)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Errorf(codes.InvalidArgument, "cluster: %v", err)
	}

	log.Printf("[REMOTE] clustered %d candidates into %d groups (max %d)", len(candidates), len(groups), maxGroups)
	return EncodeResponse(viewspace.Refs(groups))
}

// #endregion local-server
