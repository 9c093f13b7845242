package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// DefaultExchange is the topic exchange action descriptors are published to.
const DefaultExchange = "portsignal.actions"

// Publisher publishes raw payloads under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// RabbitMQPublisher publishes to a durable topic exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// NewRabbitMQPublisher dials url and declares the exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.WithField("exchange", exchange).Info("RabbitMQ publisher connected")

	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends payload to the exchange with the given routing key.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
	if err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Error("failed to publish message")
		return err
	}

	log.WithFields(log.Fields{"routing_key": routingKey, "size": len(payload)}).Debug("message published")
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.WithError(err).Warn("error closing channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// AMQPSink publishes descriptors as JSON, routed by action kind.
type AMQPSink struct {
	pub Publisher
}

// NewAMQPSink wraps a publisher.
func NewAMQPSink(pub Publisher) *AMQPSink {
	return &AMQPSink{pub: pub}
}

// RoutingKey returns the routing key a descriptor is published under.
func RoutingKey(d Descriptor) string {
	return "action." + string(d.Kind)
}

// Dispatch publishes d.
func (s *AMQPSink) Dispatch(ctx context.Context, d Descriptor) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}
	if err := s.pub.Publish(ctx, RoutingKey(d), payload); err != nil {
		return fmt.Errorf("publishing %s: %w", d.ActionID, err)
	}
	return nil
}

// Close closes the underlying publisher.
func (s *AMQPSink) Close() error {
	return s.pub.Close()
}
