package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/gamayun-daemon/gamayun/internal/ingestion"
	"github.com/gamayun-daemon/gamayun/internal/rpc"
)

// newGRPCServer builds the result-ingestion gRPC server and its listener.
// The StatsHandler instruments every call with distributed tracing,
// matching the gRPC server the teacher wires in cmd/server.
func newGRPCServer(ctx context.Context, addr string, srv *ingestion.Server) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	rpc.RegisterResultServer(s, srv)

	slog.InfoContext(ctx, "ingestion gRPC server listening", "address", lis.Addr())
	return s, lis, nil
}
