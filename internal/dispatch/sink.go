package dispatch

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Sink names accepted by Open.
const (
	SinkLog   = "log"
	SinkAMQP  = "amqp"
	SinkRedis = "redis"
)

// Options configures the broker-backed sinks.
type Options struct {
	Sink     string
	AMQPURL  string
	Exchange string
	RedisURL string
	Stream   string
}

// Sink is a Dispatcher that holds a connection.
type Sink interface {
	Dispatcher
	Close() error
}

// Open connects the sink named in opts.
func Open(ctx context.Context, opts Options) (Sink, error) {
	switch opts.Sink {
	case "", SinkLog:
		return NewLogSink(log.StandardLogger()), nil
	case SinkAMQP:
		pub, err := NewRabbitMQPublisher(opts.AMQPURL, opts.Exchange)
		if err != nil {
			return nil, err
		}
		return NewAMQPSink(pub), nil
	case SinkRedis:
		return DialRedis(ctx, opts.RedisURL, opts.Stream)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSink, opts.Sink)
}

// LogSink writes descriptors to a logrus logger.
type LogSink struct {
	logger log.FieldLogger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger log.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

// Dispatch logs the descriptor at info level.
func (s *LogSink) Dispatch(_ context.Context, d Descriptor) error {
	s.logger.WithFields(log.Fields{
		"action_id": d.ActionID,
		"kind":      d.Kind,
		"context":   d.Context,
	}).Info(d.Label)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}
