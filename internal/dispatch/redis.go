package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream descriptors are appended to.
const DefaultStream = "portsignal:actions"

type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisSink appends descriptors to a Redis stream.
type RedisSink struct {
	client streamClient
	stream string
}

// DialRedis connects to url and verifies the connection.
func DialRedis(ctx context.Context, url, stream string) (*RedisSink, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return newRedisSink(client, stream), nil
}

func newRedisSink(client streamClient, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream}
}

// Dispatch appends d to the stream.
func (s *RedisSink) Dispatch(ctx context.Context, d Descriptor) error {
	payload, err := json.Marshal(d.Context)
	if err != nil {
		return fmt.Errorf("encoding descriptor context: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"action_id": d.ActionID,
			"kind":      string(d.Kind),
			"label":     d.Label,
			"context":   string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("appending %s to %s: %w", d.ActionID, s.stream, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
