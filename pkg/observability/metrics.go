package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names.
const (
	MetricOperationTotal    = "clinicq.operation.total"
	MetricOperationDuration = "clinicq.operation.duration"
	MetricOperationErrors   = "clinicq.operation.errors"

	MetricBookingsCreated   = "clinicq.bookings.created"
	MetricBookingConflicts  = "clinicq.bookings.conflicts"
	MetricSlotCacheHits     = "clinicq.slots.cache_hits"
	MetricSlotCacheMisses   = "clinicq.slots.cache_misses"
	MetricRemindersQueued   = "clinicq.reminders.queued"
	MetricNotificationsSent = "clinicq.notifications.sent"
	MetricNotificationsLost = "clinicq.notifications.dropped"
)

// Metrics records counters and timings.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Timing(name string, d time.Duration, tags ...Tag)
}

// Tag labels a metric.
type Tag struct {
	Key   string
	Value string
}

func T(key, value string) Tag { return Tag{Key: key, Value: value} }

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics aggregates in process. The worker exposes a snapshot on
// its health endpoint.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{counters: map[string]int64{}, timings: map[string][]time.Duration{}}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metricKey(name, tags)] += value
}

func (m *InMemoryMetrics) Timing(name string, d time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := metricKey(name, tags)
	m.timings[key] = append(m.timings[key], d)
}

func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[metricKey(name, tags)]
}

func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]time.Duration(nil), m.timings[metricKey(name, tags)]...)
}

// Snapshot copies all counters.
func (m *InMemoryMetrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// metricKey sorts tags so label order does not split a series.
func metricKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.Key + "=" + t.Value
	}
	sort.Strings(parts)
	return name + ":" + strings.Join(parts, ":")
}
