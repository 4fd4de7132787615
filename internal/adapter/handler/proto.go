package handler

// Service definition for creditrisk.v1.ScoringService. Requests and responses
// travel as google.protobuf.Struct, so the default proto codec carries them
// without generated message types.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ScoringServiceName = "creditrisk.v1.ScoringService"

	scoreMethod  = "/" + ScoringServiceName + "/Score"
	schemaMethod = "/" + ScoringServiceName + "/Schema"
)

// ScoringServiceServer is the server API for ScoringService.
type ScoringServiceServer interface {
	Score(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Schema(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedScoringServiceServer()
}

// UnimplementedScoringServiceServer provides forward-compatible default implementations.
type UnimplementedScoringServiceServer struct{}

func (UnimplementedScoringServiceServer) Score(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Score not implemented")
}
func (UnimplementedScoringServiceServer) Schema(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Schema not implemented")
}
func (UnimplementedScoringServiceServer) mustEmbedUnimplementedScoringServiceServer() {}

// RegisterScoringServiceServer registers srv with s.
func RegisterScoringServiceServer(s grpc.ServiceRegistrar, srv ScoringServiceServer) {
	s.RegisterService(&scoringServiceDesc, srv)
}

var scoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ScoringServiceName,
	HandlerType: (*ScoringServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: scoringServiceScoreHandler},
		{MethodName: "Schema", Handler: scoringServiceSchemaHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "creditrisk/v1/scoring.proto",
}

func scoringServiceScoreHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServiceServer).Score(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: scoreMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServiceServer).Score(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, req, info, handler)
}

func scoringServiceSchemaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServiceServer).Schema(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: schemaMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServiceServer).Schema(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, req, info, handler)
}

// ScoringServiceClient is the client API for ScoringService.
type ScoringServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewScoringServiceClient(cc grpc.ClientConnInterface) *ScoringServiceClient {
	return &ScoringServiceClient{cc: cc}
}

func (c *ScoringServiceClient) Score(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, scoreMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScoringServiceClient) Schema(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, schemaMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
