package recalculate_all

import (
	"context"

	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
)

// Interactor schedules a full recalculation of every product snapshot.
type Interactor struct {
	scheduler contracts.RecalcScheduler
	logger    *zap.Logger
}

// NewInteractor creates a new recalculate all interactor.
func NewInteractor(scheduler contracts.RecalcScheduler, logger *zap.Logger) *Interactor {
	return &Interactor{
		scheduler: scheduler,
		logger:    logger.Named("recalculate_all"),
	}
}

// Execute enqueues the job. A full queue is returned as ErrQueueFull.
func (i *Interactor) Execute(ctx context.Context, actorID string) error {
	if err := i.scheduler.Enqueue(ctx, contracts.RecalcJob{Origin: contracts.OriginFull, Full: true}); err != nil {
		return err
	}
	i.logger.Info("full recalculation scheduled", zap.String("actor_id", actorID))
	return nil
}
