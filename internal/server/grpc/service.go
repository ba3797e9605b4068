package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pagelog.v1.Ingest"

const (
	appendMethod   = "/" + ServiceName + "/Append"
	healthMethod   = "/" + ServiceName + "/Health"
	segmentsMethod = "/" + ServiceName + "/Segments"
)

// IngestServer is implemented by the ingest service handler. Messages are
// protobuf well-known types so no generated code is needed.
type IngestServer interface {
	Append(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Segments(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// RegisterIngestServer registers srv on s.
func RegisterIngestServer(s grpc.ServiceRegistrar, srv IngestServer) {
	s.RegisterService(&IngestServiceDesc, srv)
}

// IngestServiceDesc describes pagelog.v1.Ingest.
var IngestServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IngestServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Append", Handler: appendHandler},
		{MethodName: "Health", Handler: healthHandler},
		{MethodName: "Segments", Handler: segmentsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pagelog/v1/ingest.proto",
}

func appendHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IngestServer).Append(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: appendMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IngestServer).Append(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IngestServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: healthMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IngestServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func segmentsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IngestServer).Segments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: segmentsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IngestServer).Segments(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// IngestClient calls pagelog.v1.Ingest.
type IngestClient struct {
	cc grpc.ClientConnInterface
}

// NewIngestClient returns a client using cc.
func NewIngestClient(cc grpc.ClientConnInterface) *IngestClient { return &IngestClient{cc: cc} }

func (c *IngestClient) Append(ctx context.Context, payload []byte, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, appendMethod, wrapperspb.Bytes(payload), new(emptypb.Empty), opts...)
}

func (c *IngestClient) Health(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, healthMethod, new(emptypb.Empty), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *IngestClient) Segments(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, segmentsMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
