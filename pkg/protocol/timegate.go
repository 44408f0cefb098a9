// Package protocol defines the timegate wire contract: the gRPC TimeService
// and the JSON reading served over HTTP.
//
// The gRPC service uses protobuf well-known types only, so it is declared by
// hand on grpc.ServiceDesc instead of generated code:
//
//	service TimeService {
//	  rpc Now(google.protobuf.Empty) returns (google.protobuf.Timestamp);
//	}
package protocol

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "timegate.v1.TimeService"

	// MethodNow is the full method path of TimeService.Now.
	MethodNow = "/" + ServiceName + "/Now"
)

// TimeServiceServer is the server API for TimeService.
type TimeServiceServer interface {
	Now(ctx context.Context, in *emptypb.Empty) (*timestamppb.Timestamp, error)
}

// TimeServiceClient is the client API for TimeService.
type TimeServiceClient interface {
	Now(ctx context.Context, opts ...grpc.CallOption) (*timestamppb.Timestamp, error)
}

type timeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTimeServiceClient returns a TimeServiceClient over cc.
func NewTimeServiceClient(cc grpc.ClientConnInterface) TimeServiceClient {
	return &timeServiceClient{cc: cc}
}

func (c *timeServiceClient) Now(ctx context.Context, opts ...grpc.CallOption) (*timestamppb.Timestamp, error) {
	out := &timestamppb.Timestamp{}
	if err := c.cc.Invoke(ctx, MethodNow, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TimeServiceDesc is the grpc.ServiceDesc for TimeService.
var TimeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Now",
			Handler:    nowHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timegate/v1/timegate.proto",
}

// RegisterTimeServiceServer registers impl on s.
func RegisterTimeServiceServer(s grpc.ServiceRegistrar, impl TimeServiceServer) {
	s.RegisterService(&TimeServiceDesc, impl)
}

func nowHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &emptypb.Empty{}
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TimeServiceServer).Now(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodNow}
	handler := func(ctx context.Context, req any) (any, error) {
		empty, ok := req.(*emptypb.Empty)
		if !ok {
			return nil, fmt.Errorf("invalid request type %T", req)
		}
		return srv.(TimeServiceServer).Now(ctx, empty)
	}
	return interceptor(ctx, in, info, handler)
}
