package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus is the outcome of a check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type HealthCheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry runs named checks concurrently.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: map[string]HealthChecker{}}
}

func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// OverallHealth is the JSON body of the health endpoint.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
	Counters  map[string]int64             `json:"counters,omitempty"`
}

// Check runs every checker and folds the results: any unhealthy check
// makes the whole unhealthy, otherwise any degraded one degrades it.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, check := range checkers {
		wg.Add(1)
		go func(name string, check HealthChecker) {
			defer wg.Done()
			start := time.Now()
			res := check(ctx)
			res.Duration = time.Since(start)
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status := HealthStatusHealthy
	for _, res := range results {
		switch res.Status {
		case HealthStatusUnhealthy:
			status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if status == HealthStatusHealthy {
				status = HealthStatusDegraded
			}
		}
	}
	return OverallHealth{Status: status, Timestamp: time.Now().UTC(), Checks: results}
}

// Handler serves Check as JSON, answering 503 when unhealthy. counters
// may be nil.
func (r *HealthRegistry) Handler(counters func() map[string]int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()

		health := r.Check(ctx)
		if counters != nil {
			health.Counters = counters()
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
}

// PingChecker adapts a Ping method. Failures count as unhealthy unless
// the dependency is optional, in which case they only degrade.
func PingChecker(ping func(ctx context.Context) error, optional bool) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			status := HealthStatusUnhealthy
			if optional {
				status = HealthStatusDegraded
			}
			return HealthCheckResult{Status: status, Message: err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy}
	}
}
