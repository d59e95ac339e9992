package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/clinicq/internal/notifications/domain"
	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// BreakerConfig tunes the circuit breaker around the sink.
type BreakerConfig struct {
	// FailureThreshold trips the breaker after this many consecutive
	// failed sends.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// Dispatcher turns appointment events into notifications. A failed send
// is logged and dropped; it never fails the consumer, so bookings are not
// held hostage by delivery.
type Dispatcher struct {
	sink    domain.Sink
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewDispatcher creates a new dispatcher around sink.
func NewDispatcher(sink domain.Sink, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "notification-sink",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Dispatcher{sink: sink, breaker: breaker, logger: logger, metrics: metrics}
}

func (d *Dispatcher) EventTypes() []string {
	return scheduling.RoutingKeys
}

// Handle turns the event into a notification and sends it through the
// breaker.
func (d *Dispatcher) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var change domain.AppointmentChange
	if err := json.Unmarshal(event.Payload, &change); err != nil {
		d.logger.WarnContext(ctx, "skipping undecodable appointment event",
			"event_id", event.EventID,
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}

	for _, n := range domain.Render(event.RoutingKey, change) {
		_, err := d.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, d.sink.Send(ctx, n)
		})
		if err != nil {
			d.metrics.Counter(observability.MetricNotificationsLost, 1)
			level := slog.LevelWarn
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				level = slog.LevelDebug
			}
			d.logger.Log(ctx, level, "notification not delivered",
				"event_id", event.EventID,
				"routing_key", event.RoutingKey,
				"recipient", n.Recipient,
				"error", err,
			)
			continue
		}
		d.metrics.Counter(observability.MetricNotificationsSent, 1)
	}
	return nil
}

// State exposes the breaker state for health reporting.
func (d *Dispatcher) State() string {
	return d.breaker.State().String()
}
