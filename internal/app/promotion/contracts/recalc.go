package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// ErrQueueFull is returned by a non-blocking queue that cannot take more jobs.
var ErrQueueFull = errors.New("recalculation queue is full")

// Job origins.
const (
	OriginCreate = "create"
	OriginUpdate = "update"
	OriginDelete = "delete"
	OriginFull   = "full"
	OriginRepair = "repair"
)

// RecalcJob asks the engine to re-evaluate products affected by a change
// from Old to New. Either side may be nil. Full ignores both and recomputes
// every eligible promotion.
type RecalcJob struct {
	ID         string                    `json:"id"`
	Origin     string                    `json:"origin"`
	Old        *domain.PromotionSnapshot `json:"old,omitempty"`
	New        *domain.PromotionSnapshot `json:"new,omitempty"`
	Full       bool                      `json:"full,omitempty"`
	EnqueuedAt time.Time                 `json:"enqueued_at"`
}

// RecalcScheduler accepts jobs without waiting for them to run.
type RecalcScheduler interface {
	Enqueue(ctx context.Context, job RecalcJob) error
}
