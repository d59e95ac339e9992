package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ConsumerRegistry fans an event out to every consumer registered for
// its routing key.
type ConsumerRegistry struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{consumers: map[string][]EventConsumer{}, logger: logger}
}

// Register adds a consumer for its event types.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		r.consumers[key] = append(r.consumers[key], consumer)
	}
}

// GetConsumers returns the consumers subscribed to routingKey.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.consumers[routingKey]
}

// EventTypes lists the routing keys with at least one consumer, sorted.
func (r *ConsumerRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.consumers))
	for k := range r.consumers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch runs every consumer even when an earlier one fails and returns
// the joined errors.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, c := range consumers {
		if err := c.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, cs := range r.consumers {
		n += len(cs)
	}
	return n
}
