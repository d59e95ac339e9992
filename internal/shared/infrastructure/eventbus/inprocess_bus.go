package eventbus

import (
	"context"
	"log/slog"
	"time"
)

// InProcessBus delivers published envelopes synchronously to local
// consumers. The worker uses it when RABBITMQ_URL is unset.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{registry: NewConsumerRegistry(logger), logger: logger}
}

func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes and dispatches the envelope. Consumer failures are
// returned so the outbox can retry, matching broker redelivery.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := DecodeEvent(payload, routingKey)
	if err != nil {
		b.logger.Error("dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		return err
	}
	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Start blocks until ctx is cancelled; delivery happens inside Publish.
func (b *InProcessBus) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *InProcessBus) Close() error { return nil }

func (b *InProcessBus) Registry() *ConsumerRegistry { return b.registry }
