// Package jobs holds the background task definitions processed by the
// console worker.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAnalyticsWarmup prefetches analytics payloads into Redis.
	TaskTypeAnalyticsWarmup = "analytics:warmup"
)

// AnalyticsWarmer is implemented by the analytics service.
type AnalyticsWarmer interface {
	Warm(ctx context.Context) error
}

// NewAnalyticsWarmupTask constructs an Asynq task.
func NewAnalyticsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAnalyticsWarmup, nil)
}

// HandleAnalyticsWarmupTask processes TaskTypeAnalyticsWarmup tasks.
func HandleAnalyticsWarmupTask(warmer AnalyticsWarmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := warmer.Warm(ctx); err != nil {
			if logger != nil {
				logger.Error("analytics warmup failed", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("analytics cache warmed")
		}
		return nil
	}
}
