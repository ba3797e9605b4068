package transports

import (
	"context"

	"google.golang.org/grpc"

	grpcserver "github.com/rzbill/pagelog/internal/server/grpc"
)

// GrpcTransport implements Transport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli *grpcserver.IngestClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(grpcserver.NewIngestClient(conn))
}

// Append sends one record via gRPC.
func (t *GrpcTransport) Append(ctx context.Context, payload []byte) error {
	return t.withClient(ctx, func(cli *grpcserver.IngestClient) error {
		return cli.Append(ctx, payload)
	})
}

// Health returns the server status string.
func (t *GrpcTransport) Health(ctx context.Context) (status string, err error) {
	err = t.withClient(ctx, func(cli *grpcserver.IngestClient) error {
		status, err = cli.Health(ctx)
		return err
	})
	return status, err
}

// Segments lists the catalog via gRPC.
func (t *GrpcTransport) Segments(ctx context.Context) ([]Segment, error) {
	var out []Segment
	err := t.withClient(ctx, func(cli *grpcserver.IngestClient) error {
		list, err := cli.Segments(ctx)
		if err != nil {
			return err
		}
		for _, v := range list.GetValues() {
			f := v.GetStructValue().GetFields()
			out = append(out, Segment{
				Seq:        uint64(f["seq"].GetNumberValue()),
				Path:       f["path"].GetStringValue(),
				OpenedAtMs: int64(f["openedAtMs"].GetNumberValue()),
				Size:       -1,
			})
		}
		return nil
	})
	return out, err
}
