package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/alfredjeanlab/modflags/internal/metrics"
)

// SettingsServiceName is the health-check service name reported for the
// settings store.
const SettingsServiceName = "modflags.Settings"

// NewGRPCServer creates a gRPC server with standard interceptors and
// registers the health service and reflection. Both the overall status and
// SettingsServiceName report SERVING; the returned health server is used to
// flip them during shutdown.
func (s *Server) NewGRPCServer(authToken string) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			metrics.UnaryServerInterceptor(),
			LoggingInterceptor(s.logger),
			AuthInterceptor(authToken),
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(SettingsServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return srv, hs
}
