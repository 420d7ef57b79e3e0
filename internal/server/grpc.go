package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// NewGRPCServer builds a server with the invoice service, health and reflection registered.
// Request IDs are assigned before rate limiting.
func NewGRPCServer(svc InvoiceServiceServer, cfg common.ServerConfig, logger *slog.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RequestIDInterceptor(),
		LoggingInterceptor(logger),
		RateLimitInterceptor(cfg.RateLimit, cfg.RateBurst),
	))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(srv)

	RegisterInvoiceServiceServer(srv, svc)
	return srv, hs
}
