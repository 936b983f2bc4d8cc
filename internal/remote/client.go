package remote

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

var _ cluster.Remote = (*Client)(nil)

// #region client-struct
// Client wraps the gRPC connection to a remote clustering service.
type Client struct {
	conn   *grpc.ClientConn
	client ClusterServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to a clustering service. The connection is lazy; an
// unreachable address surfaces on the first call.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewClusterServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc ClusterServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region cluster
// Cluster asks the service to partition candidates into at most maxGroups
// groups. The response is returned unvalidated.
func (c *Client) Cluster(ctx context.Context, candidates []viewspace.ViewSpace, maxGroups int) ([]viewspace.GroupRef, error) {
	req, err := EncodeRequest(candidates, maxGroups)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Cluster(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("cluster rpc: %w", err)
	}
	return DecodeResponse(resp)
}

// #endregion cluster
