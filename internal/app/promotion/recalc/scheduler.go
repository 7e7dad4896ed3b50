package recalc

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

// Scheduler stamps jobs and hands them to a Queue. It implements
// contracts.RecalcScheduler for the use cases.
type Scheduler struct {
	queue   Queue
	clock   clock.Clock
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(queue Queue, clk clock.Clock, m *metrics.Registry, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		queue:   queue,
		clock:   clk,
		metrics: m,
		logger:  logger.Named("recalc_scheduler"),
	}
}

// Enqueue assigns an id and timestamp when missing and submits the job.
// A rejected job is counted and returned; the caller decides whether to log.
func (s *Scheduler) Enqueue(ctx context.Context, job contracts.RecalcJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = s.clock.Now()
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.metrics.JobsDropped.Inc()
		return err
	}

	s.metrics.JobsEnqueued.WithLabelValues(job.Origin).Inc()
	s.logger.Debug("recalculation job enqueued",
		zap.String("job_id", job.ID),
		zap.String("origin", job.Origin),
	)
	return nil
}
