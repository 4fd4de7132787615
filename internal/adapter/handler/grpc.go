package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// requestIDMetadataKey is the gRPC counterpart of RequestIDHeader.
const requestIDMetadataKey = "x-request-id"

type GrpcServer struct {
	UnimplementedScoringServiceServer
}

func NewGrpcServer() *GrpcServer {
	return &GrpcServer{}
}

// NewServer builds a gRPC server exposing the scoring service and the
// standard health service. Reflection is registered only when asked for.
func NewServer(srv *GrpcServer, serviceName string, withReflection bool) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor))

	RegisterScoringServiceServer(s, srv)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ScoringServiceName, healthpb.HealthCheckResponse_SERVING)

	if withReflection {
		reflection.Register(s)
	}

	return s
}

// Score accepts {"attributes": {Field: number}, "explain": bool}. Every
// attribute value must be a whole number.
func (s *GrpcServer) Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	parsed, err := parseScoreRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ev, err := evaluate("grpc", parsed.Attributes)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownField) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		slog.Error("❌ scoring failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return toStruct(newScoreResponse(requestIDFromMetadata(ctx), ev, parsed.Explain))
}

// Schema ignores its argument and returns the input schema.
func (s *GrpcServer) Schema(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(newSchemaResponse())
}

func parseScoreRequest(req *structpb.Struct) (ScoreRequest, error) {
	var out ScoreRequest

	for key, v := range req.GetFields() {
		switch key {
		case "attributes":
			attrs, ok := v.GetKind().(*structpb.Value_StructValue)
			if !ok {
				return out, errors.New("attributes must be an object")
			}
			out.Attributes = make(map[string]int, len(attrs.StructValue.GetFields()))
			for name, av := range attrs.StructValue.GetFields() {
				n, ok := av.GetKind().(*structpb.Value_NumberValue)
				if !ok {
					return out, fmt.Errorf("attribute %s: not a number", name)
				}
				if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
					return out, fmt.Errorf("attribute %s: %v is not an integer", name, n.NumberValue)
				}
				out.Attributes[name] = int(n.NumberValue)
			}
		case "explain":
			b, ok := v.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return out, errors.New("explain must be a boolean")
			}
			out.Explain = b.BoolValue
		default:
			return out, fmt.Errorf("unknown request field %q", key)
		}
	}

	return out, nil
}

// NewScoreRequest builds the Struct payload of a Score call.
func NewScoreRequest(raw map[string]int, explain bool) (*structpb.Struct, error) {
	attrs := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		attrs[k] = v
	}
	return structpb.NewStruct(map[string]interface{}{
		"attributes": attrs,
		"explain":    explain,
	})
}

// DecodeScoreResponse converts a Score reply back into a ScoreResponse.
func DecodeScoreResponse(s *structpb.Struct) (ScoreResponse, error) {
	var resp ScoreResponse
	b, err := s.MarshalJSON()
	if err != nil {
		return resp, fmt.Errorf("failed to encode response: %w", err)
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, id := range md.Get(requestIDMetadataKey) {
			if _, err := uuid.Parse(id); err == nil {
				return id
			}
		}
	}
	return uuid.NewString()
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.Info("← rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
