// Package ingest is the entry point for records arriving over the network:
// it filters payloads and hands the survivors to the page writer.
package ingest

import (
	"context"
	"errors"

	"github.com/rzbill/pagelog/internal/filter"
	"github.com/rzbill/pagelog/internal/pagewriter"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// ErrFiltered is returned when the filter rejects a payload.
var ErrFiltered = errors.New("ingest: record filtered")

// ErrEmpty is returned for a zero-length payload.
var ErrEmpty = errors.New("ingest: empty payload")

// Appender is the part of the writer the service needs.
type Appender interface {
	Append(ctx context.Context, record any) error
}

// Service filters and enqueues payloads.
type Service struct {
	out    Appender
	filter *filter.Filter
	logger logpkg.Logger
}

// New returns a Service writing to out. A nil filter accepts everything.
func New(out Appender, f *filter.Filter, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Service{out: out, filter: f, logger: logger.WithComponent("ingest")}
}

// Append enqueues payload. It blocks while the queue is full until ctx is
// done, and returns pagewriter.ErrStopped once the writer is stopping.
func (s *Service) Append(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmpty
	}
	if !s.filter.Eval(payload) {
		s.logger.Debug("record filtered", logpkg.Int("size", len(payload)))
		return ErrFiltered
	}
	// The writer may hold the record after Append returns.
	rec := append([]byte(nil), payload...)
	if err := s.out.Append(ctx, rec); err != nil {
		if !errors.Is(err, pagewriter.ErrStopped) {
			s.logger.Warn("append failed", logpkg.Err(err))
		}
		return err
	}
	return nil
}
