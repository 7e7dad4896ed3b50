package update_promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/history"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
)

// Request contains the fields to change. Nil means unchanged.
type Request struct {
	PromotionID     string
	Name            *string
	Description     *string
	Kind            *domain.DiscountKind
	Value           *decimal.Decimal
	Scope           *domain.Scope
	StartDate       *time.Time
	EndDate         *time.Time
	Active          *bool
	ExpectedVersion *int64
	ActorID         string
}

// Interactor handles the update promotion use case.
type Interactor struct {
	repo       contracts.PromotionRepository
	outboxRepo contracts.OutboxRepository
	committer  contracts.Committer
	history    *history.Logger
	scheduler  contracts.RecalcScheduler
	clock      clock.Clock
	logger     *zap.Logger
}

// NewInteractor creates a new update promotion interactor.
func NewInteractor(
	repo contracts.PromotionRepository,
	outboxRepo contracts.OutboxRepository,
	committer contracts.Committer,
	history *history.Logger,
	scheduler contracts.RecalcScheduler,
	clock clock.Clock,
	logger *zap.Logger,
) *Interactor {
	return &Interactor{
		repo:       repo,
		outboxRepo: outboxRepo,
		committer:  committer,
		history:    history,
		scheduler:  scheduler,
		clock:      clock,
		logger:     logger.Named("update_promotion"),
	}
}

// Execute applies a partial edit under an optimistic version check.
// An edit that changes nothing returns the current state without writing.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*contracts.PromotionDTO, error) {
	if _, err := uuid.Parse(req.PromotionID); err != nil {
		return nil, domain.ErrInvalidPromotionID
	}

	// 1. Load promotion
	promo, err := i.repo.GetByID(ctx, req.PromotionID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != promo.Version() {
		return nil, domain.ErrConcurrentModification
	}

	before := promo.Snapshot()
	now := i.clock.Now()

	// 2. Apply changes through the aggregate
	if err := i.applyChanges(ctx, promo, req, now); err != nil {
		return nil, err
	}

	if !promo.Changes().HasChanges() {
		return toDTO(promo), nil
	}
	promo.MarkUpdated(req.ActorID, now)

	// 3. Build commit plan: dirty columns + outbox events
	plan := committer.NewPlan()

	mut, err := i.repo.UpdateMut(promo)
	if err != nil {
		return nil, fmt.Errorf("failed to create update mutation: %w", err)
	}
	plan.Add(mut)

	for _, event := range promo.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return nil, err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 4. Apply plan guarded by the loaded version
	check := committer.VersionCheck{
		Table:           m_promotion.TableName,
		Key:             spanner.Key{promo.ID()},
		Column:          m_promotion.Version,
		ExpectedVersion: before.Version,
	}
	if err := i.committer.ApplyWithVersionCheck(ctx, check, plan); err != nil {
		return nil, mapCommitError(err)
	}
	promo.ClearEvents()

	// 5. Audit and schedule
	after := promo.Snapshot()
	i.history.Edited(ctx, req.ActorID, before, after)

	job := contracts.RecalcJob{Origin: contracts.OriginUpdate, Old: &before, New: &after}
	if err := i.scheduler.Enqueue(ctx, job); err != nil {
		i.logger.Warn("recalculation not scheduled",
			zap.String("promotion_id", after.ID),
			zap.Error(err),
		)
	}

	return toDTO(promo), nil
}

func (i *Interactor) applyChanges(ctx context.Context, promo *domain.Promotion, req *Request, now time.Time) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != promo.Name() {
			if err := promo.Rename(name); err != nil {
				return err
			}
			taken, err := i.repo.NameTaken(ctx, promo.Name(), promo.ID())
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrDuplicateName
			}
		}
	}

	if req.Description != nil {
		promo.SetDescription(*req.Description)
	}

	if req.Kind != nil || req.Value != nil {
		if err := promo.ChangeDiscount(req.Kind, req.Value); err != nil {
			return err
		}
	}

	if req.Scope != nil {
		if err := promo.ChangeScope(*req.Scope); err != nil {
			return err
		}
	}

	if req.StartDate != nil || req.EndDate != nil {
		if err := promo.Reschedule(req.StartDate, req.EndDate); err != nil {
			return err
		}
	}

	if req.Active != nil {
		promo.SetActive(*req.Active, now)
	}

	return nil
}

func mapCommitError(err error) error {
	switch {
	case errors.Is(err, committer.ErrVersionConflict):
		return domain.ErrConcurrentModification
	case errors.Is(err, committer.ErrRowNotFound):
		return domain.ErrPromotionNotFound
	case committer.IsAlreadyExists(err):
		return domain.ErrDuplicateName
	default:
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
}

func toDTO(promo *domain.Promotion) *contracts.PromotionDTO {
	return &contracts.PromotionDTO{
		PromotionSnapshot: promo.Snapshot(),
		CreatedAt:         promo.CreatedAt(),
		UpdatedAt:         promo.UpdatedAt(),
	}
}
