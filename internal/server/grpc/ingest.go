package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/pagewriter"
	"github.com/rzbill/pagelog/internal/runtime"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

type ingestSvc struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

func (s *ingestSvc) Append(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if err := s.rt.Ingest().Append(ctx, in.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *ingestSvc) Health(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	if err := s.rt.CheckHealth(ctx); err != nil {
		s.logger.Debug("health check failed", logpkg.Err(err))
		return wrapperspb.String("not_serving"), nil
	}
	return wrapperspb.String("ok"), nil
}

func (s *ingestSvc) Segments(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	metas, err := s.rt.Segments(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]any, 0, len(metas))
	for _, m := range metas {
		items = append(items, map[string]any{
			"seq":        float64(m.Seq),
			"path":       m.Path,
			"openedAtMs": float64(m.OpenedAtMs),
		})
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ingest.ErrEmpty):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ingest.ErrFiltered):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, pagewriter.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
