package recalc

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

const DefaultRepairCooldown = time.Minute

// Repairer drains a Worker's error channel. A failed targeted job may leave
// some of its products with an outdated snapshot, so the Repairer schedules
// a full recalculation, at most once per cooldown. Failed full runs are not
// repaired.
type Repairer struct {
	errs      <-chan JobError
	scheduler contracts.RecalcScheduler
	clock     clock.Clock
	cooldown  time.Duration
	last      time.Time
	metrics   *metrics.Registry
	logger    *zap.Logger
}

// NewRepairer creates a Repairer reading errs.
func NewRepairer(
	errs <-chan JobError,
	scheduler contracts.RecalcScheduler,
	clk clock.Clock,
	cooldown time.Duration,
	m *metrics.Registry,
	logger *zap.Logger,
) *Repairer {
	if cooldown <= 0 {
		cooldown = DefaultRepairCooldown
	}
	return &Repairer{
		errs:      errs,
		scheduler: scheduler,
		clock:     clk,
		cooldown:  cooldown,
		metrics:   m,
		logger:    logger.Named("recalc_repair"),
	}
}

// Run handles failures until ctx is cancelled.
func (r *Repairer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case jobErr := <-r.errs:
			r.Handle(ctx, jobErr)
		}
	}
}

// Handle reports whether a full recalculation was scheduled for jobErr.
func (r *Repairer) Handle(ctx context.Context, jobErr JobError) bool {
	if jobErr.Job.Full {
		return false
	}

	now := r.clock.Now()
	if !r.last.IsZero() && now.Sub(r.last) < r.cooldown {
		return false
	}

	job := contracts.RecalcJob{Origin: contracts.OriginRepair, Full: true}
	if err := r.scheduler.Enqueue(ctx, job); err != nil {
		r.logger.Warn("repair recalculation not scheduled",
			zap.String("failed_job_id", jobErr.Job.ID),
			zap.Error(err),
		)
		return false
	}

	r.last = now
	r.metrics.RepairsScheduled.Inc()
	r.logger.Info("full recalculation scheduled after failed job",
		zap.String("failed_job_id", jobErr.Job.ID),
		zap.String("origin", jobErr.Job.Origin),
	)
	return true
}
