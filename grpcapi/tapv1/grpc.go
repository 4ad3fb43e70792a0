package tapv1

import (
	"context"

	"google.golang.org/grpc"
)

// TapAggregatorServer is the server API for the tap_aggregator.v1
// TapAggregator service.
type TapAggregatorServer interface {
	AggregateReceipts(context.Context, *RavRequest) (*RavResponse, error)
}

// RegisterTapAggregatorServer registers the service implementation.
func RegisterTapAggregatorServer(s grpc.ServiceRegistrar, srv TapAggregatorServer) {
	s.RegisterService(&TapAggregator_ServiceDesc, srv)
}

func _TapAggregator_AggregateReceipts_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RavRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TapAggregatorServer).AggregateReceipts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/tap_aggregator.v1.TapAggregator/AggregateReceipts",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TapAggregatorServer).AggregateReceipts(ctx, req.(*RavRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TapAggregator_ServiceDesc is the grpc.ServiceDesc for the TapAggregator
// service.
var TapAggregator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "tap_aggregator.v1.TapAggregator",
	HandlerType: (*TapAggregatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AggregateReceipts",
			Handler:    _TapAggregator_AggregateReceipts_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/tap/v1.proto",
}
