package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueueName is the durable queue the notification worker reads.
const DefaultQueueName = "clinicq.notifications"

// RabbitMQConsumer binds a queue to the event exchange and dispatches
// deliveries through a ConsumerRegistry with manual acks.
type RabbitMQConsumer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	registry *ConsumerRegistry
	logger   *slog.Logger
	running  bool
	done     chan struct{}
}

// RabbitMQConsumerConfig names the broker, queue and bindings.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Logger    *slog.Logger
}

// NewRabbitMQConsumer dials the broker and declares the queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}

	conn, ch, err := dialExchange(cfg.URL)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	cfg.Logger.Info("rabbitmq consumer connected", "queue", cfg.QueueName, "exchange", ExchangeName)
	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		queue:    cfg.QueueName,
		registry: registry,
		logger:   cfg.Logger,
		done:     make(chan struct{}),
	}, nil
}

// RegisterConsumer adds consumer to the registry and binds its keys.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.channel.QueueBind(c.queue, key, ExchangeName, false, nil); err != nil {
			c.logger.Error("queue bind failed", "routing_key", key, "error", err)
		}
	}
}

// Start consumes until ctx ends.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.logger.Info("consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := DecodeEvent(d.Body, d.RoutingKey)
	if err != nil {
		// poison message; requeueing would loop forever
		c.logger.Error("discarding undecodable delivery", "routing_key", d.RoutingKey, "error", err)
		_ = d.Ack(false)
		return
	}

	if err := c.registry.Dispatch(ctx, event); err != nil {
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("nack failed", "error", nackErr)
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.logger.Error("ack failed", "error", err)
	}
}

func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.done)
		c.running = false
	}
	if err := c.channel.Close(); err != nil {
		c.logger.Warn("closing rabbitmq channel", "error", err)
	}
	return c.conn.Close()
}
