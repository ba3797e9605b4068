// Package amqpsource feeds records from a RabbitMQ queue into the ingest
// service. Deliveries are acknowledged once the record is queued for the
// writer (or deliberately dropped by the filter) and requeued when the
// writer is stopping.
package amqpsource

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/pagewriter"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// Appender receives delivery bodies.
type Appender interface {
	Append(ctx context.Context, payload []byte) error
}

// Config selects the broker and queue.
type Config struct {
	URL      string
	Queue    string
	Prefetch int
	// ConsumerTag identifies this consumer to the broker. Default "pagelog".
	ConsumerTag string
}

// Source consumes one queue.
type Source struct {
	cfg    Config
	out    Appender
	logger logpkg.Logger
}

func New(cfg Config, out Appender, logger logpkg.Logger) *Source {
	if cfg.ConsumerTag == "" {
		cfg.ConsumerTag = "pagelog"
	}
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Source{cfg: cfg, out: out, logger: logger.WithComponent("amqp")}
}

// Run connects, declares the queue as durable and consumes until ctx is
// done, the connection drops or the writer stops.
func (s *Source) Run(ctx context.Context) error {
	if s.cfg.URL == "" || s.cfg.Queue == "" {
		return errors.New("amqpsource: URL and Queue are required")
	}
	conn, err := amqp.Dial(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("amqpsource: dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqpsource: channel: %w", err)
	}
	defer ch.Close()

	if s.cfg.Prefetch > 0 {
		if err := ch.Qos(s.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("amqpsource: qos: %w", err)
		}
	}
	if _, err := ch.QueueDeclare(s.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqpsource: declare %s: %w", s.cfg.Queue, err)
	}
	deliveries, err := ch.Consume(s.cfg.Queue, s.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqpsource: consume %s: %w", s.cfg.Queue, err)
	}
	s.logger.Info("consuming", logpkg.Str("queue", s.cfg.Queue), logpkg.Int("prefetch", s.cfg.Prefetch))

	err = s.consume(ctx, deliveries)
	if cerr := ch.Cancel(s.cfg.ConsumerTag, false); cerr != nil && !errors.Is(cerr, amqp.ErrClosed) {
		s.logger.Warn("cancel consumer", logpkg.Err(cerr))
	}
	return err
}

// consume handles deliveries until ctx is done, the channel closes or a
// delivery reports that the writer stopped.
func (s *Source) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("amqpsource: delivery channel closed")
			}
			if stop := s.handle(ctx, d); stop {
				return nil
			}
		}
	}
}

// handle appends one delivery and settles it. It reports true when the
// writer no longer accepts records.
func (s *Source) handle(ctx context.Context, d amqp.Delivery) bool {
	err := s.out.Append(ctx, d.Body)
	switch {
	case err == nil, errors.Is(err, ingest.ErrFiltered), errors.Is(err, ingest.ErrEmpty):
		if aerr := d.Ack(false); aerr != nil {
			s.logger.Warn("ack failed", logpkg.Err(aerr), logpkg.Uint64("tag", d.DeliveryTag))
		}
		return false
	default:
		stopping := ctx.Err() != nil || errors.Is(err, pagewriter.ErrStopped)
		if !stopping {
			s.logger.Error("append failed; requeueing", logpkg.Err(err), logpkg.Uint64("tag", d.DeliveryTag))
		}
		if nerr := d.Nack(false, true); nerr != nil {
			s.logger.Warn("nack failed", logpkg.Err(nerr), logpkg.Uint64("tag", d.DeliveryTag))
		}
		return stopping
	}
}
