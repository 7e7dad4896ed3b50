// Package history appends promotion audit entries on a best-effort basis.
package history

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

// Logger records lifecycle events. A failed append is logged and counted
// but never returned, so it cannot undo the promotion change.
type Logger struct {
	repo    contracts.HistoryRepository
	clock   clock.Clock
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewLogger creates a history Logger.
func NewLogger(repo contracts.HistoryRepository, clk clock.Clock, m *metrics.Registry, logger *zap.Logger) *Logger {
	return &Logger{
		repo:    repo,
		clock:   clk,
		metrics: m,
		logger:  logger.Named("history"),
	}
}

// Created records a new promotion. There is no before-image or diff.
func (l *Logger) Created(ctx context.Context, actor string, after domain.PromotionSnapshot) {
	l.append(ctx, &domain.HistoryEntry{
		PromotionID: after.ID,
		Action:      domain.ActionCreated,
		ActorID:     actor,
	})
}

// Edited records an update with its field diff. An edit that turns the
// active flag off is recorded as deactivated.
func (l *Logger) Edited(ctx context.Context, actor string, before, after domain.PromotionSnapshot) {
	action := domain.ActionEdited
	if before.Active && !after.Active {
		action = domain.ActionDeactivated
	}
	l.append(ctx, &domain.HistoryEntry{
		PromotionID: after.ID,
		Action:      action,
		ActorID:     actor,
		Before:      &before,
		Changes:     domain.Diff(before, after),
	})
}

// Deleted records a removal with the last known state.
func (l *Logger) Deleted(ctx context.Context, actor string, before domain.PromotionSnapshot) {
	l.append(ctx, &domain.HistoryEntry{
		PromotionID: before.ID,
		Action:      domain.ActionDeleted,
		ActorID:     actor,
		Before:      &before,
	})
}

func (l *Logger) append(ctx context.Context, entry *domain.HistoryEntry) {
	entry.ID = uuid.New().String()
	entry.Timestamp = l.clock.Now()

	if err := l.repo.Append(ctx, entry); err != nil {
		l.metrics.HistoryFailures.Inc()
		l.logger.Warn("failed to write promotion history",
			zap.String("promotion_id", entry.PromotionID),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}
