package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_product"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/query"
)

const scanPageSize = 1000

// CatalogRepo implements CatalogRepository for Spanner.
type CatalogRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	model     *m_product.Model
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(client *spanner.Client, comm *committer.Committer) contracts.CatalogRepository {
	return &CatalogRepo{
		client:    client,
		committer: comm,
		model:     m_product.NewModel(),
	}
}

// ProductIDsInScope pages through matching product ids ordered by id.
func (r *CatalogRepo) ProductIDsInScope(ctx context.Context, scope domain.Scope) ([]string, error) {
	if scope.MatchesNothing() {
		return nil, nil
	}
	return r.scanIDs(ctx, ScopeCondition(scope))
}

// ProductIDsWithStaleSnapshot finds snapshots pointing outside liveIDs.
func (r *CatalogRepo) ProductIDsWithStaleSnapshot(ctx context.Context, liveIDs []string) ([]string, error) {
	cond := query.IsNotNull(m_product.PromoPromotionID)
	if len(liveIDs) > 0 {
		return r.scanIDs(ctx, cond, query.NotIn(m_product.PromoPromotionID, liveIDs))
	}
	return r.scanIDs(ctx, cond)
}

func (r *CatalogRepo) scanIDs(ctx context.Context, conds ...query.Condition) ([]string, error) {
	base := query.From(m_product.TableName).
		Select(m_product.ProductID).
		OrderBy(query.Asc, m_product.ProductID).
		Limit(scanPageSize)
	for _, c := range conds {
		base = base.Where(c)
	}

	var ids []string
	last := ""
	for {
		q := base
		if last != "" {
			q = q.Where(query.Gt(m_product.ProductID, last))
		}

		page, err := r.readIDs(ctx, q.Build())
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
		if len(page) < scanPageSize {
			return ids, nil
		}
		last = page[len(page)-1]
	}
}

func (r *CatalogRepo) readIDs(ctx context.Context, stmt spanner.Statement) ([]string, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	ids := make([]string, 0, scanPageSize)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}
		var id string
		if err := row.Column(0, &id); err != nil {
			return nil, fmt.Errorf("failed to parse product id: %w", err)
		}
		ids = append(ids, id)
	}
}

// GetPricingByIDs reads the pricing projection for a set of products.
func (r *CatalogRepo) GetPricingByIDs(ctx context.Context, productIDs []string) ([]domain.ProductPricing, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	keys := make([]spanner.KeySet, len(productIDs))
	for i, id := range productIDs {
		keys[i] = spanner.Key{id}
	}

	iter := r.client.Single().Read(ctx, m_product.TableName, spanner.KeySets(keys...), m_product.PricingColumns)
	defer iter.Stop()

	out := make([]domain.ProductPricing, 0, len(productIDs))
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read products: %w", err)
		}

		var data m_product.PricingData
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse product: %w", err)
		}
		out = append(out, pricingToDomain(&data))
	}
}

// GetPricing reads one product's pricing projection.
func (r *CatalogRepo) GetPricing(ctx context.Context, productID string) (*domain.ProductPricing, error) {
	row, err := r.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.PricingColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.PricingData
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}

	p := pricingToDomain(&data)
	return &p, nil
}

// ApplySnapshots commits one batch of snapshot writes.
func (r *CatalogRepo) ApplySnapshots(ctx context.Context, writes []contracts.SnapshotWrite) error {
	plan := committer.NewPlan()
	for _, w := range writes {
		plan.Add(r.model.SnapshotMut(w.ProductID, snapshotToData(w.Snapshot)))
	}
	if err := r.committer.Apply(ctx, plan); err != nil {
		return fmt.Errorf("failed to write %d snapshots: %w", len(writes), err)
	}
	return nil
}

// ScopeCondition translates a scope into the catalog's native filter.
// Global yields nil (no filter).
func ScopeCondition(scope domain.Scope) query.Condition {
	if scope.IsGlobal() {
		return nil
	}

	var conds []query.Condition
	if c := scope.Categories(); len(c) > 0 {
		conds = append(conds, query.In(m_product.Category, c))
	}
	if b := scope.Brands(); len(b) > 0 {
		conds = append(conds, query.In(m_product.Brand, b))
	}
	if s := scope.Skus(); len(s) > 0 {
		conds = append(conds, query.In(m_product.SKU, s))
	}
	return query.AnyOf(conds...)
}

func pricingToDomain(data *m_product.PricingData) domain.ProductPricing {
	p := domain.ProductPricing{
		ID:       data.ProductID,
		SKU:      data.SKU,
		Category: data.Category,
		Brand:    data.Brand,
		Price:    domain.MoneyFromRat(&data.Price),
	}

	if data.PromoPromotionID.Valid {
		p.Snapshot = &domain.PriceSnapshot{
			PromotionID:      data.PromoPromotionID.StringVal,
			OriginalPrice:    domain.MoneyFromRat(&data.PromoOriginalPrice.Numeric),
			DiscountedPrice:  domain.MoneyFromRat(&data.PromoDiscountedPrice.Numeric),
			DiscountKind:     domain.DiscountKind(data.PromoDiscountKind.StringVal),
			DiscountValue:    domain.DecimalFromRat(&data.PromoDiscountValue.Numeric),
			ComputedAt:       data.PromoComputedAt.Time,
			PromotionEndDate: data.PromoEndDate.Time,
		}
	}

	return p
}

func snapshotToData(s *domain.PriceSnapshot) *m_product.SnapshotData {
	if s == nil {
		return nil
	}
	return &m_product.SnapshotData{
		Valid:           true,
		PromotionID:     s.PromotionID,
		OriginalPrice:   s.OriginalPrice.Rat(),
		DiscountedPrice: s.DiscountedPrice.Rat(),
		DiscountKind:    string(s.DiscountKind),
		DiscountValue:   domain.RatFromDecimal(s.DiscountValue),
		ComputedAt:      s.ComputedAt,
		EndDate:         s.PromotionEndDate,
	}
}
