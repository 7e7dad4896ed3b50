// Package recalc keeps product promotion snapshots in line with the
// promotions table. The Engine computes affected products and writes
// snapshots in batches; a Queue and Worker run it off the request path.
package recalc

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain/services"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
	"github.com/light-bringer/promo-engine/internal/pkg/telemetry"
)

const (
	DefaultReadChunkSize  = 200
	DefaultWriteBatchSize = 500
)

// PromotionSource loads the promotions eligible at an instant.
type PromotionSource interface {
	ListEligible(ctx context.Context, t time.Time) ([]domain.PromotionSnapshot, error)
}

// Config sizes engine reads and writes.
type Config struct {
	ReadChunkSize  int
	WriteBatchSize int
}

// Result summarizes one engine run.
type Result struct {
	Affected  int
	Evaluated int
	Upserts   int
	Clears    int
	Batches   int
}

func (r *Result) add(o Result) {
	r.Affected += o.Affected
	r.Evaluated += o.Evaluated
	r.Upserts += o.Upserts
	r.Clears += o.Clears
	r.Batches += o.Batches
}

// Engine recomputes snapshots for the products a promotion change touches.
type Engine struct {
	promotions PromotionSource
	catalog    contracts.CatalogRepository
	cache      contracts.PriceCache
	selector   *services.Selector
	clock      clock.Clock
	cfg        Config
	metrics    *metrics.Registry
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewEngine creates an Engine. A nil cache disables invalidation.
func NewEngine(
	promotions PromotionSource,
	catalog contracts.CatalogRepository,
	cache contracts.PriceCache,
	clk clock.Clock,
	cfg Config,
	m *metrics.Registry,
	logger *zap.Logger,
) *Engine {
	if cfg.ReadChunkSize <= 0 {
		cfg.ReadChunkSize = DefaultReadChunkSize
	}
	if cfg.WriteBatchSize <= 0 {
		cfg.WriteBatchSize = DefaultWriteBatchSize
	}
	return &Engine{
		promotions: promotions,
		catalog:    catalog,
		cache:      cache,
		selector:   services.NewSelector(domain.NewPricingCalculator()),
		clock:      clk,
		cfg:        cfg,
		metrics:    m,
		logger:     logger.Named("recalc_engine"),
		tracer:     telemetry.Tracer("promo-engine/recalc"),
	}
}

// Recalculate re-evaluates every product matched by the old or current scope.
// Either snapshot may be nil. Create passes no old; delete passes a
// deactivated copy as current.
func (e *Engine) Recalculate(ctx context.Context, old, current *domain.PromotionSnapshot) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "recalc.Recalculate")
	defer span.End()

	var promotionID string
	switch {
	case current != nil:
		promotionID = current.ID
	case old != nil:
		promotionID = old.ID
	}
	span.SetAttributes(attribute.String("promotion.id", promotionID))

	ids, err := e.affectedIDs(ctx, old, current)
	if err != nil {
		return Result{}, e.fail(span, err)
	}
	span.SetAttributes(attribute.Int("products.affected", len(ids)))
	if len(ids) == 0 {
		return Result{}, nil
	}

	res, err := e.evaluate(ctx, ids)
	if err != nil {
		return res, e.fail(span, err)
	}

	e.logger.Debug("recalculation finished",
		zap.String("promotion_id", promotionID),
		zap.Int("affected", res.Affected),
		zap.Int("upserts", res.Upserts),
		zap.Int("clears", res.Clears),
	)
	return res, nil
}

// RecalculateAll runs Recalculate for every eligible promotion, then
// recomputes products whose snapshot points at a promotion that is no
// longer eligible. Cost grows with promotions times products.
func (e *Engine) RecalculateAll(ctx context.Context) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "recalc.RecalculateAll")
	defer span.End()

	eligible, err := e.promotions.ListEligible(ctx, e.clock.Now())
	if err != nil {
		return Result{}, e.fail(span, fmt.Errorf("failed to load eligible promotions: %w", err))
	}
	span.SetAttributes(attribute.Int("promotions.eligible", len(eligible)))

	var total Result
	liveIDs := make([]string, 0, len(eligible))
	for i := range eligible {
		promo := &eligible[i]
		liveIDs = append(liveIDs, promo.ID)

		res, err := e.Recalculate(ctx, promo, promo)
		total.add(res)
		if err != nil {
			return total, e.fail(span, err)
		}
	}

	stale, err := e.catalog.ProductIDsWithStaleSnapshot(ctx, liveIDs)
	if err != nil {
		return total, e.fail(span, fmt.Errorf("failed to find stale snapshots: %w", err))
	}
	if len(stale) > 0 {
		res, err := e.evaluate(ctx, stale)
		total.add(res)
		if err != nil {
			return total, e.fail(span, err)
		}
	}

	e.logger.Info("full recalculation finished",
		zap.Int("promotions", len(eligible)),
		zap.Int("stale", len(stale)),
		zap.Int("upserts", total.Upserts),
		zap.Int("clears", total.Clears),
	)
	return total, nil
}

func (e *Engine) affectedIDs(ctx context.Context, old, current *domain.PromotionSnapshot) ([]string, error) {
	seen := make(map[string]struct{})
	for _, snap := range []*domain.PromotionSnapshot{old, current} {
		if snap == nil {
			continue
		}
		ids, err := e.catalog.ProductIDsInScope(ctx, snap.Scope)
		if err != nil {
			return nil, fmt.Errorf("failed to query products in scope: %w", err)
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// evaluate loads the eligible set once, runs the selector per product and
// writes the outcome in batches.
func (e *Engine) evaluate(ctx context.Context, ids []string) (Result, error) {
	res := Result{Affected: len(ids)}
	now := e.clock.Now()

	eligible, err := e.promotions.ListEligible(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to load eligible promotions: %w", err)
	}

	batch := make([]contracts.SnapshotWrite, 0, e.cfg.WriteBatchSize)
	for start := 0; start < len(ids); start += e.cfg.ReadChunkSize {
		end := min(start+e.cfg.ReadChunkSize, len(ids))

		products, err := e.catalog.GetPricingByIDs(ctx, ids[start:end])
		if err != nil {
			return res, fmt.Errorf("failed to read products: %w", err)
		}

		for _, p := range products {
			res.Evaluated++
			snap := e.selector.Select(p, eligible, now)
			switch {
			case snap != nil:
				batch = append(batch, contracts.SnapshotWrite{ProductID: p.ID, Snapshot: snap})
				res.Upserts++
			case p.Snapshot != nil:
				batch = append(batch, contracts.SnapshotWrite{ProductID: p.ID})
				res.Clears++
			}

			if len(batch) >= e.cfg.WriteBatchSize {
				if err := e.flush(ctx, batch); err != nil {
					return res, err
				}
				res.Batches++
				batch = batch[:0]
			}
		}
		e.metrics.ProductsEvaluated.Add(float64(len(products)))
	}

	if len(batch) > 0 {
		if err := e.flush(ctx, batch); err != nil {
			return res, err
		}
		res.Batches++
	}
	return res, nil
}

func (e *Engine) flush(ctx context.Context, batch []contracts.SnapshotWrite) error {
	if err := e.catalog.ApplySnapshots(ctx, batch); err != nil {
		return fmt.Errorf("failed to flush snapshot batch: %w", err)
	}

	ids := make([]string, len(batch))
	var upserts, clears int
	for i, w := range batch {
		ids[i] = w.ProductID
		if w.Snapshot != nil {
			upserts++
		} else {
			clears++
		}
	}
	e.metrics.BatchesFlushed.Inc()
	e.metrics.SnapshotsWritten.WithLabelValues("upsert").Add(float64(upserts))
	e.metrics.SnapshotsWritten.WithLabelValues("clear").Add(float64(clears))

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, ids...); err != nil {
			e.logger.Warn("price cache invalidation failed", zap.Int("products", len(ids)), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
