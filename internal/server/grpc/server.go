package grpcserver

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/rzbill/pagelog/internal/runtime"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt   *runtime.Runtime
	grpc *grpc.Server
}

// New constructs a gRPC server and registers the ingest service.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	s := &Server{rt: rt, grpc: grpc.NewServer(opts...)}
	RegisterIngestServer(s.grpc, &ingestSvc{rt: rt, logger: logger.WithComponent("grpc")})
	return s
}

// Serve serves on l until ctx is done or Close is called. In-flight RPCs
// finish before it returns.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Close stops accepting, waits for in-flight RPCs and closes the listeners.
func (s *Server) Close() {
	s.grpc.GracefulStop()
}
