package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/metrics"
)

const serviceName = "bolintake.v1.IntakeService"

// IntakeServer is the gRPC surface. Messages are google.protobuf.Struct documents.
type IntakeServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ IntakeServer = (*IntakeService)(nil)

func unaryHandler(name string, call func(IntakeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IntakeServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IntakeServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// IntakeServiceDesc describes the intake service for grpc.Server.RegisterService.
var IntakeServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IntakeServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Extract", IntakeServer.Extract),
		unaryHandler("Validate", IntakeServer.Validate),
		unaryHandler("Submit", IntakeServer.Submit),
		unaryHandler("FindJobs", IntakeServer.FindJobs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bolintake/v1/intake.proto",
}

func RegisterIntakeServer(s grpc.ServiceRegistrar, srv IntakeServer) {
	s.RegisterService(&IntakeServiceDesc, srv)
}

// NewGRPCServer builds a server with the intake, health and reflection services registered.
func NewGRPCServer(srv IntakeServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(requestInterceptor(logger)))
	RegisterIntakeServer(gs, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(gs)
	return gs, hs
}

// requestInterceptor tags each call with a request ID (from x-request-id metadata when sent),
// logs it and counts it.
func requestInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-request-id"); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.New().String()
		}
		ctx = common.WithRequestID(ctx, reqID)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		metrics.RecordRPC(info.FullMethod, code.String())
		logger.Info("grpc.request",
			"method", info.FullMethod,
			"req_id", reqID,
			"code", code.String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// IntakeClient calls a remote intake service.
type IntakeClient struct {
	cc grpc.ClientConnInterface
}

func NewIntakeClient(cc grpc.ClientConnInterface) *IntakeClient {
	return &IntakeClient{cc: cc}
}

func (c *IntakeClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Extract", in, opts...)
}

func (c *IntakeClient) Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Validate", in, opts...)
}

func (c *IntakeClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Submit", in, opts...)
}

func (c *IntakeClient) FindJobs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "FindJobs", in, opts...)
}
