package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentilens/internal/models"
)

const HealthCheckInterval = 15 * time.Second

type HealthReporter interface {
	Health() models.PipelineHealth
}

// MonitorBackendHealth polls the service until ctx is done, storing whether
// it is usable in healthy. A service that has not loaded yet counts as
// healthy; only a failed load or failing requests flip it.
func MonitorBackendHealth(ctx context.Context, clock clockwork.Clock, svc HealthReporter, healthy *atomic.Bool, interval time.Duration, metrics *PredictionMetrics) {
	if interval <= 0 {
		interval = HealthCheckInterval
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			CheckHealth(svc, healthy, metrics)
		}
	}
}

func CheckHealth(svc HealthReporter, healthy *atomic.Bool, metrics *PredictionMetrics) models.PipelineHealth {
	health := svc.Health()
	isHealthy := health.Status != "error"
	healthy.Store(isHealthy)

	if metrics != nil {
		if isHealthy {
			metrics.BackendHealthy.Set(1)
		} else {
			metrics.BackendHealthy.Set(0)
		}
	}

	attrs := []any{
		slog.String("status", health.Status),
		slog.Bool("model_loaded", health.ModelLoaded),
		slog.Int64("predictions", health.PerformanceStats.Predictions),
		slog.Float64("avg_ms", health.PerformanceStats.AverageProcessingTimeMS),
		slog.Int64("errors", health.ErrorCount),
	}
	if !isHealthy {
		slog.Warn("[HealthCheck] Sentiment backend is unhealthy", attrs...)
	} else {
		slog.Debug("[HealthCheck] Sentiment backend status", attrs...)
	}
	return health
}
