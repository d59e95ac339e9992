package observability

import (
	"context"
	"log/slog"
	"time"
)

// TimeOperation runs fn, logs its outcome and records duration, count and
// error metrics tagged with the operation name.
func TimeOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if logger != nil {
		if err != nil {
			logger.WarnContext(ctx, "operation failed", "operation", operation, "duration_ms", elapsed.Milliseconds(), "error", err)
		} else {
			logger.DebugContext(ctx, "operation completed", "operation", operation, "duration_ms", elapsed.Milliseconds())
		}
	}
	if metrics != nil {
		tag := T("operation", operation)
		metrics.Timing(MetricOperationDuration, elapsed, tag)
		metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}
	return err
}
