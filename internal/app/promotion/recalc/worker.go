package recalc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

const errorBuffer = 64

// Runner is the part of Engine the worker drives.
type Runner interface {
	Recalculate(ctx context.Context, old, current *domain.PromotionSnapshot) (Result, error)
	RecalculateAll(ctx context.Context) (Result, error)
}

// JobError reports a failed job on the worker's error channel.
type JobError struct {
	Job contracts.RecalcJob
	Err error
}

// Worker consumes a Queue and runs the engine for each job. Failed jobs are
// logged, counted and published on Errors; they are never retried.
type Worker struct {
	queue       Queue
	engine      Runner
	concurrency int
	errs        chan JobError
	metrics     *metrics.Registry
	logger      *zap.Logger
}

// NewWorker creates a Worker with the given number of consumers.
func NewWorker(queue Queue, engine Runner, concurrency int, m *metrics.Registry, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		engine:      engine,
		concurrency: concurrency,
		errs:        make(chan JobError, errorBuffer),
		metrics:     m,
		logger:      logger.Named("recalc_worker"),
	}
}

// Errors returns failed jobs. When nobody drains it, failures beyond the
// buffer are only logged.
func (w *Worker) Errors() <-chan JobError {
	return w.errs
}

// Run blocks until ctx is cancelled. There is no per-job timeout.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("recalculation worker started", zap.Int("consumers", w.concurrency))

	g, ctx := errgroup.WithContext(ctx)
	for range w.concurrency {
		g.Go(func() error {
			return w.queue.Consume(ctx, w.Handle)
		})
	}
	err := g.Wait()

	w.logger.Info("recalculation worker stopped")
	return err
}

// Handle runs one job.
func (w *Worker) Handle(ctx context.Context, job contracts.RecalcJob) error {
	start := time.Now()

	var (
		res Result
		err error
	)
	if job.Full {
		res, err = w.engine.RecalculateAll(ctx)
	} else {
		res, err = w.engine.Recalculate(ctx, job.Old, job.New)
	}
	w.metrics.JobDurationSec.Observe(time.Since(start).Seconds())

	if err != nil {
		w.metrics.JobsFailed.Inc()
		w.logger.Error("recalculation job failed",
			zap.String("job_id", job.ID),
			zap.String("origin", job.Origin),
			zap.Int("upserts_before_failure", res.Upserts),
			zap.Int("clears_before_failure", res.Clears),
			zap.Error(err),
		)
		select {
		case w.errs <- JobError{Job: job, Err: err}:
		default:
		}
		return err
	}

	w.logger.Info("recalculation job done",
		zap.String("job_id", job.ID),
		zap.String("origin", job.Origin),
		zap.Int("affected", res.Affected),
		zap.Int("upserts", res.Upserts),
		zap.Int("clears", res.Clears),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
