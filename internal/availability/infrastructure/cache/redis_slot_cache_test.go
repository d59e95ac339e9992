package cache

import (
	"context"
	"errors"
	"path"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
)

// fakeClient is a map-backed Client. Scan returns every match in one page.
type fakeClient struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func (f *fakeClient) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	_, ok := f.data[key]
	f.ttls[key] = ttl
	return redis.NewBoolResult(ok, nil)
}

func (f *fakeClient) Scan(_ context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	var keys []string
	for k := range f.data {
		if ok, _ := path.Match(match, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return redis.NewScanCmdResult(keys, 0, f.err)
}

func TestRedisSlotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := NewRedisSlotCache(client, 0, nil)
	doctorID := uuid.New()
	monday := domain.NewCalendarDate(2026, time.March, 2)

	_, ok := c.Get(ctx, doctorID, monday)
	assert.False(t, ok)

	c.Set(ctx, doctorID, monday, c.Generation(ctx, doctorID, monday), domain.CachedSlots{Slots: []string{"09:00", "09:45"}, DurationMinutes: 15})
	assert.Equal(t, DefaultTTL, client.ttls[Key(doctorID, monday)])

	got, ok := c.Get(ctx, doctorID, monday)
	require.True(t, ok)
	assert.Equal(t, []string{"09:00", "09:45"}, got.Slots)
	assert.Equal(t, 15, got.DurationMinutes)

	c.InvalidateDate(ctx, doctorID, monday)
	_, ok = c.Get(ctx, doctorID, monday)
	assert.False(t, ok)
}

func TestRedisSlotCache_EmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewRedisSlotCache(newFakeClient(), time.Minute, nil)
	doctorID := uuid.New()
	date := domain.NewCalendarDate(2026, time.March, 7)

	c.Set(ctx, doctorID, date, 0, domain.CachedSlots{Slots: []string{}, DurationMinutes: 15})
	got, ok := c.Get(ctx, doctorID, date)
	require.True(t, ok)
	assert.NotNil(t, got.Slots)
	assert.Empty(t, got.Slots)
}

func TestRedisSlotCache_InvalidateDoctor(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := NewRedisSlotCache(client, time.Minute, nil)
	doctorID, otherID := uuid.New(), uuid.New()
	monday := domain.NewCalendarDate(2026, time.March, 2)

	for _, d := range []domain.CalendarDate{monday, monday.AddDays(1)} {
		c.Set(ctx, doctorID, d, 0, domain.CachedSlots{Slots: []string{"09:00"}, DurationMinutes: 15})
	}
	c.Set(ctx, otherID, monday, 0, domain.CachedSlots{Slots: []string{"10:00"}, DurationMinutes: 15})

	c.InvalidateDoctor(ctx, doctorID)

	genKey := "slotgen:" + doctorID.String()
	assert.Equal(t, map[string]string{
		Key(otherID, monday): `{"slots":["10:00"],"duration_minutes":15}`,
		genKey:               "1",
	}, client.data)
	assert.Equal(t, GenerationTTL, client.ttls[genKey])
	assert.Equal(t, int64(1), c.Generation(ctx, doctorID, monday))
	assert.Zero(t, c.Generation(ctx, otherID, monday))
}

func TestRedisSlotCache_ErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.err = errors.New("connection refused")
	c := NewRedisSlotCache(client, time.Minute, nil)
	doctorID := uuid.New()
	date := domain.NewCalendarDate(2026, time.March, 2)

	assert.Equal(t, int64(-1), c.Generation(ctx, doctorID, date))
	c.Set(ctx, doctorID, date, 0, domain.CachedSlots{Slots: []string{"09:00"}})
	_, ok := c.Get(ctx, doctorID, date)
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		c.InvalidateDate(ctx, doctorID, date)
		c.InvalidateDoctor(ctx, doctorID)
	})
}

func TestRedisSlotCache_SetSkipsAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := NewRedisSlotCache(client, time.Minute, nil)
	doctorID := uuid.New()
	monday := domain.NewCalendarDate(2026, time.March, 2)
	stale := domain.CachedSlots{Slots: []string{"09:00"}, DurationMinutes: 15}

	t.Run("date invalidated during the read", func(t *testing.T) {
		gen := c.Generation(ctx, doctorID, monday)
		c.InvalidateDate(ctx, doctorID, monday)
		c.Set(ctx, doctorID, monday, gen, stale)

		_, ok := c.Get(ctx, doctorID, monday)
		assert.False(t, ok)
	})

	t.Run("doctor invalidated during the read", func(t *testing.T) {
		gen := c.Generation(ctx, doctorID, monday)
		c.InvalidateDoctor(ctx, doctorID)
		c.Set(ctx, doctorID, monday, gen, stale)

		_, ok := c.Get(ctx, doctorID, monday)
		assert.False(t, ok)
	})

	t.Run("other date invalidated", func(t *testing.T) {
		gen := c.Generation(ctx, doctorID, monday)
		c.InvalidateDate(ctx, doctorID, monday.AddDays(1))
		c.Set(ctx, doctorID, monday, gen, stale)

		got, ok := c.Get(ctx, doctorID, monday)
		require.True(t, ok)
		assert.Equal(t, stale.Slots, got.Slots)
	})
}
