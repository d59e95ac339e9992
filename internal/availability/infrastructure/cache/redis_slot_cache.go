package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
)

// DefaultTTL bounds staleness when an invalidation is missed.
const DefaultTTL = 30 * time.Second

// GenerationTTL keeps generation counters well past any in-flight read.
const GenerationTTL = 24 * time.Hour

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisSlotCache stores resolved slot lists under slots:{doctor}:{date}.
// Generations live under slotgen:{doctor} and slotgen:{doctor}:{date};
// a date's generation is the sum of the two counters. Redis failures are
// logged and behave as misses.
type RedisSlotCache struct {
	client Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisSlotCache wraps client. A non-positive ttl uses DefaultTTL.
func NewRedisSlotCache(client Client, ttl time.Duration, logger *slog.Logger) *RedisSlotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSlotCache{client: client, ttl: ttl, logger: logger}
}

// Key is the cache key for one doctor and date.
func Key(doctorID uuid.UUID, date domain.CalendarDate) string {
	return fmt.Sprintf("slots:%s:%s", doctorID, date)
}

func doctorGenKey(doctorID uuid.UUID) string {
	return fmt.Sprintf("slotgen:%s", doctorID)
}

func dateGenKey(doctorID uuid.UUID, date domain.CalendarDate) string {
	return fmt.Sprintf("slotgen:%s:%s", doctorID, date)
}

// Get returns the cached list for the doctor and date, if any.
func (c *RedisSlotCache) Get(ctx context.Context, doctorID uuid.UUID, date domain.CalendarDate) (*domain.CachedSlots, bool) {
	raw, err := c.client.Get(ctx, Key(doctorID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "slot cache read failed", "error", err)
		return nil, false
	}

	var cached domain.CachedSlots
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.WarnContext(ctx, "slot cache entry unreadable", "error", err)
		return nil, false
	}
	if cached.Slots == nil {
		cached.Slots = []string{}
	}
	return &cached, true
}

// Generation returns -1 when the counters cannot be read, which no Set
// will accept.
func (c *RedisSlotCache) Generation(ctx context.Context, doctorID uuid.UUID, date domain.CalendarDate) int64 {
	gen, err := c.generation(ctx, doctorID, date)
	if err != nil {
		c.logger.WarnContext(ctx, "slot cache generation read failed", "error", err)
		return -1
	}
	return gen
}

func (c *RedisSlotCache) generation(ctx context.Context, doctorID uuid.UUID, date domain.CalendarDate) (int64, error) {
	var sum int64
	for _, key := range []string{doctorGenKey(doctorID), dateGenKey(doctorID, date)} {
		n, err := c.client.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, err
		}
		sum += n
	}
	return sum, nil
}

// Set stores slots unless the date was invalidated after generation was
// taken.
func (c *RedisSlotCache) Set(ctx context.Context, doctorID uuid.UUID, date domain.CalendarDate, generation int64, slots domain.CachedSlots) {
	if generation < 0 {
		return
	}
	current, err := c.generation(ctx, doctorID, date)
	if err != nil || current != generation {
		c.logger.DebugContext(ctx, "slot cache write skipped", "doctor_id", doctorID, "date", date.String())
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(doctorID, date), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "slot cache write failed", "error", err)
	}
}

// InvalidateDate advances the date's generation and drops its entry.
func (c *RedisSlotCache) InvalidateDate(ctx context.Context, doctorID uuid.UUID, date domain.CalendarDate) {
	c.bump(ctx, dateGenKey(doctorID, date))
	if err := c.client.Del(ctx, Key(doctorID, date)).Err(); err != nil {
		c.logger.WarnContext(ctx, "slot cache invalidation failed", "error", err)
	}
}

// InvalidateDoctor drops every cached date for the doctor.
func (c *RedisSlotCache) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) {
	c.bump(ctx, doctorGenKey(doctorID))
	pattern := fmt.Sprintf("slots:%s:*", doctorID)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.logger.WarnContext(ctx, "slot cache scan failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.WarnContext(ctx, "slot cache invalidation failed", "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func (c *RedisSlotCache) bump(ctx context.Context, key string) {
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "slot cache generation bump failed", "error", err)
		return
	}
	if err := c.client.Expire(ctx, key, GenerationTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "slot cache generation expiry failed", "error", err)
	}
}
