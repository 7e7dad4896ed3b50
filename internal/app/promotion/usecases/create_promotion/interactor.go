package create_promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/history"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
)

// Request contains the data needed to create a promotion.
type Request struct {
	Name        string
	Description string
	Kind        domain.DiscountKind
	Value       decimal.Decimal
	Scope       domain.Scope
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
	ActorID     string
}

// Interactor handles the create promotion use case.
type Interactor struct {
	repo       contracts.PromotionRepository
	outboxRepo contracts.OutboxRepository
	committer  contracts.Committer
	history    *history.Logger
	scheduler  contracts.RecalcScheduler
	clock      clock.Clock
	logger     *zap.Logger
}

// NewInteractor creates a new create promotion interactor.
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
		logger:     logger.Named("create_promotion"),
	}
}

// Execute validates and stores a new promotion, then schedules
// recalculation when it is active. It returns once the row is committed.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*contracts.PromotionDTO, error) {
	// 1. Reject duplicate names up front; the unique index catches races
	name := strings.TrimSpace(req.Name)
	if name != "" {
		taken, err := i.repo.NameTaken(ctx, name, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrDuplicateName
		}
	}

	// 2. Create domain aggregate
	promo, err := domain.NewPromotion(domain.NewPromotionParams{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		Kind:        req.Kind,
		Value:       req.Value,
		Scope:       req.Scope,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Active:      req.Active,
		CreatedBy:   req.ActorID,
	}, i.clock)
	if err != nil {
		return nil, err
	}

	// 3. Build commit plan: row + outbox events
	plan := committer.NewPlan()

	mut, err := i.repo.InsertMut(promo)
	if err != nil {
		return nil, fmt.Errorf("failed to create insert mutation: %w", err)
	}
	plan.Add(mut)

	for _, event := range promo.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return nil, err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 4. Apply plan
	if err := i.committer.Apply(ctx, plan); err != nil {
		if committer.IsAlreadyExists(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	promo.ClearEvents()

	// 5. Audit and schedule; neither can fail the request
	created := promo.Snapshot()
	i.history.Created(ctx, req.ActorID, created)

	if created.Active {
		i.schedule(ctx, contracts.RecalcJob{Origin: contracts.OriginCreate, New: &created})
	}

	return &contracts.PromotionDTO{
		PromotionSnapshot: created,
		CreatedAt:         promo.CreatedAt(),
		UpdatedAt:         promo.UpdatedAt(),
	}, nil
}

func (i *Interactor) schedule(ctx context.Context, job contracts.RecalcJob) {
	if err := i.scheduler.Enqueue(ctx, job); err != nil {
		i.logger.Warn("recalculation not scheduled",
			zap.String("promotion_id", job.New.ID),
			zap.Error(err),
		)
	}
}
