package delete_promotion

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/history"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
)

// Guard decides whether deletions are currently allowed.
type Guard interface {
	Check(ctx context.Context) error
}

// Request contains the data needed to delete a promotion.
type Request struct {
	PromotionID string
	ActorID     string
}

// Interactor handles the delete promotion use case.
type Interactor struct {
	repo       contracts.PromotionRepository
	outboxRepo contracts.OutboxRepository
	committer  contracts.Committer
	guard      Guard
	history    *history.Logger
	scheduler  contracts.RecalcScheduler
	clock      clock.Clock
	logger     *zap.Logger
}

// NewInteractor creates a new delete promotion interactor.
func NewInteractor(
	repo contracts.PromotionRepository,
	outboxRepo contracts.OutboxRepository,
	committer contracts.Committer,
	guard Guard,
	history *history.Logger,
	scheduler contracts.RecalcScheduler,
	clock clock.Clock,
	logger *zap.Logger,
) *Interactor {
	return &Interactor{
		repo:       repo,
		outboxRepo: outboxRepo,
		committer:  committer,
		guard:      guard,
		history:    history,
		scheduler:  scheduler,
		clock:      clock,
		logger:     logger.Named("delete_promotion"),
	}
}

// Execute removes a promotion and schedules the products it priced for
// recalculation, so they fall back to the next best promotion or list price.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if _, err := uuid.Parse(req.PromotionID); err != nil {
		return domain.ErrInvalidPromotionID
	}

	// 1. Load promotion; a missing id is reported before the guard runs
	promo, err := i.repo.GetByID(ctx, req.PromotionID)
	if err != nil {
		return err
	}
	before := promo.Snapshot()

	// 2. Deletion is blocked while any order is pending
	if err := i.guard.Check(ctx); err != nil {
		return err
	}

	// 3. Domain event
	promo.MarkDeleted(req.ActorID, i.clock.Now())

	// 4. Build commit plan: delete + outbox events
	plan := committer.NewPlan()
	plan.Add(i.repo.DeleteMut(promo.ID()))

	for _, event := range promo.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 5. Apply plan; an edit racing the delete wins
	check := committer.VersionCheck{
		Table:           m_promotion.TableName,
		Key:             spanner.Key{promo.ID()},
		Column:          m_promotion.Version,
		ExpectedVersion: before.Version,
	}
	if err := i.committer.ApplyWithVersionCheck(ctx, check, plan); err != nil {
		switch {
		case errors.Is(err, committer.ErrVersionConflict):
			return domain.ErrConcurrentModification
		case errors.Is(err, committer.ErrRowNotFound):
			return domain.ErrPromotionNotFound
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	promo.ClearEvents()

	// 6. Audit and schedule
	i.history.Deleted(ctx, req.ActorID, before)

	gone := before.Deactivated()
	job := contracts.RecalcJob{Origin: contracts.OriginDelete, Old: &before, New: &gone}
	if err := i.scheduler.Enqueue(ctx, job); err != nil {
		i.logger.Warn("recalculation not scheduled",
			zap.String("promotion_id", before.ID),
			zap.Error(err),
		)
	}

	return nil
}
