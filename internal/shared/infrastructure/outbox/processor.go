package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig tunes polling and retry behaviour.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig polls every 100ms and dead-letters after five attempts.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// backoff doubles from RetryBackoffBase per attempt, capped at RetryBackoffMax.
func (c ProcessorConfig) backoff(attempt int) time.Duration {
	base, ceiling := c.RetryBackoffBase, c.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}
	d := base << convert.IntToUintClamped(attempt-1)
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

type outcome int

const (
	delivered outcome = iota
	retrying
	deadLettered
)

// Processor relays committed outbox rows to the event bus. A row that
// fails to publish is retried with backoff until MaxRetries, then
// dead-lettered.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	published atomic.Uint64
	failed    atomic.Uint64
	dead      atomic.Uint64

	statsMu         sync.Mutex
	lastError       string
	lastErrorAt     *time.Time
	lastProcessedAt *time.Time
	oldestPending   *time.Time
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{repo: repo, publisher: publisher, config: config, logger: logger}
}

// Start polls in the background until Stop is called or ctx ends.
// Starting a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(runCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop cancels the loop and waits for the batch in flight.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the poll loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("outbox poll failed", "error", err)
			}
		}
	}
}

// ProcessOnce relays one batch synchronously. Per-message publish failures
// are recorded on the row, not returned.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	batch, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.noteError(err)
		return err
	}
	p.notePoll(batch)

	for _, msg := range batch {
		switch p.deliver(ctx, msg) {
		case delivered:
			p.published.Add(1)
		case retrying:
			p.failed.Add(1)
		case deadLettered:
			p.dead.Add(1)
		}
	}
	return nil
}

func (p *Processor) deliver(ctx context.Context, msg *Message) outcome {
	err := p.publish(ctx, msg)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			// Delivery is at-least-once: the row goes out again on the next poll.
			p.logger.Error("failed to mark message as published", "id", msg.ID, "event_id", msg.EventID, "error", markErr)
		}
		return delivered
	}

	p.noteError(err)
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"attempt", msg.RetryCount+1,
		metadataGroup(msg.Metadata),
		"error", err,
	)

	attempt := msg.RetryCount + 1
	if p.config.MaxRetries <= 0 || attempt >= p.config.MaxRetries {
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return deadLettered
	}

	next := time.Now().Add(p.config.backoff(attempt))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to schedule message retry", "id", msg.ID, "error", markErr)
	}
	return retrying
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	body, err := msg.Envelope()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg.RoutingKey, body)
}

// metadataGroup exposes the event's correlation chain in log lines.
func metadataGroup(raw json.RawMessage) slog.Attr {
	var meta domain.EventMetadata
	if len(raw) == 0 || json.Unmarshal(raw, &meta) != nil {
		return slog.Group("meta")
	}
	return slog.Group("meta",
		"correlation_id", meta.CorrelationID.String(),
		"causation_id", meta.CausationID.String(),
		"user_id", meta.UserID.String(),
	)
}

// Stats is a point-in-time view of relay health.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns the current relay statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	s := Stats{
		IsRunning:       running,
		PublishedCount:  p.published.Load(),
		FailedCount:     p.failed.Load(),
		DeadCount:       p.dead.Load(),
		LastError:       p.lastError,
		LastErrorAt:     p.lastErrorAt,
		LastProcessedAt: p.lastProcessedAt,
		OldestMessageAt: p.oldestPending,
	}
	if p.oldestPending != nil && p.lastProcessedAt != nil {
		s.LagSeconds = p.lastProcessedAt.Sub(*p.oldestPending).Seconds()
	}
	return s
}

func (p *Processor) noteError(err error) {
	now := time.Now()
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.lastError = err.Error()
	p.lastErrorAt = &now
}

func (p *Processor) notePoll(batch []*Message) {
	now := time.Now()
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	p.lastProcessedAt = &now
	p.oldestPending = nil
	for _, msg := range batch {
		if p.oldestPending == nil || msg.CreatedAt.Before(*p.oldestPending) {
			created := msg.CreatedAt
			p.oldestPending = &created
		}
	}
}
