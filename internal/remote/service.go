package remote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// The clustering service carries google.protobuf.Struct payloads so either
// side can be implemented without generated stubs.
const (
	ServiceName                           = "viewspace.v1.ClusterService"
	ClusterService_Cluster_FullMethodName = "/viewspace.v1.ClusterService/Cluster"
)

// ClusterServiceClient is the client API for the clustering service.
type ClusterServiceClient interface {
	Cluster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type clusterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClusterServiceClient binds the client API to a connection.
func NewClusterServiceClient(cc grpc.ClientConnInterface) ClusterServiceClient {
	return &clusterServiceClient{cc}
}

func (c *clusterServiceClient) Cluster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClusterService_Cluster_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ClusterServiceServer is the server API for the clustering service.
type ClusterServiceServer interface {
	Cluster(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterClusterServiceServer attaches srv to a gRPC server.
func RegisterClusterServiceServer(s grpc.ServiceRegistrar, srv ClusterServiceServer) {
	s.RegisterService(&ClusterService_ServiceDesc, srv)
}

func _ClusterService_Cluster_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Cluster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ClusterService_Cluster_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Cluster(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ClusterService_ServiceDesc describes the clustering service for grpc.Server.
var ClusterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClusterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Cluster",
			Handler:    _ClusterService_Cluster_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "viewspace/v1/cluster.proto",
}

// #endregion service-desc
