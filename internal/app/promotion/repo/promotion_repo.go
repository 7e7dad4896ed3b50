package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/query"
)

// PromotionRepo implements PromotionRepository for Spanner.
type PromotionRepo struct {
	client *spanner.Client
	model  *m_promotion.Model
}

// NewPromotionRepo creates a new PromotionRepo.
func NewPromotionRepo(client *spanner.Client) contracts.PromotionRepository {
	return &PromotionRepo{
		client: client,
		model:  m_promotion.NewModel(),
	}
}

// InsertMut creates a mutation for inserting a new promotion.
func (r *PromotionRepo) InsertMut(promo *domain.Promotion) (*spanner.Mutation, error) {
	return r.model.InsertMut(domainToData(promo)), nil
}

// UpdateMut creates a mutation for updating a promotion (only dirty fields).
// The aggregate has already bumped its version in MarkUpdated.
func (r *PromotionRepo) UpdateMut(promo *domain.Promotion) (*spanner.Mutation, error) {
	changes := promo.Changes()
	if !changes.HasChanges() {
		return nil, nil
	}

	updates := make(map[string]interface{})

	if changes.Dirty(domain.FieldName) {
		updates[m_promotion.Name] = promo.Name()
	}

	if changes.Dirty(domain.FieldDescription) {
		updates[m_promotion.Description] = promo.Description()
	}

	if changes.Dirty(domain.FieldKind) {
		updates[m_promotion.Kind] = string(promo.Kind())
	}

	if changes.Dirty(domain.FieldValue) {
		updates[m_promotion.Value] = domain.RatFromDecimal(promo.Value())
	}

	if changes.Dirty(domain.FieldScope) {
		scope := promo.Scope()
		updates[m_promotion.ScopeKind] = string(scope.Kind())
		updates[m_promotion.ScopeCategories] = scope.Categories()
		updates[m_promotion.ScopeBrands] = scope.Brands()
		updates[m_promotion.ScopeSkus] = scope.Skus()
	}

	if changes.Dirty(domain.FieldStartDate) {
		updates[m_promotion.StartDate] = promo.StartDate()
	}

	if changes.Dirty(domain.FieldEndDate) {
		updates[m_promotion.EndDate] = promo.EndDate()
	}

	if changes.Dirty(domain.FieldActive) {
		updates[m_promotion.Active] = promo.IsActive()
	}

	if len(updates) == 0 {
		return nil, nil
	}

	updates[m_promotion.Version] = promo.Version()
	updates[m_promotion.UpdatedBy] = promo.UpdatedBy()
	updates[m_promotion.UpdatedAt] = promo.UpdatedAt()

	return r.model.UpdateMut(promo.ID(), updates), nil
}

// DeleteMut creates a mutation for removing a promotion.
func (r *PromotionRepo) DeleteMut(promotionID string) *spanner.Mutation {
	return r.model.DeleteMut(promotionID)
}

// GetByID retrieves a promotion by ID, reconstructing the domain aggregate.
func (r *PromotionRepo) GetByID(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	row, err := r.client.Single().ReadRow(ctx, m_promotion.TableName, spanner.Key{promotionID}, m_promotion.AllColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to read promotion: %w", err)
	}

	var data m_promotion.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse promotion: %w", err)
	}

	return dataToDomain(&data), nil
}

// NameTaken checks the unique name index, ignoring excludeID.
func (r *PromotionRepo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	stmt := query.From(m_promotion.TableName).
		Select(m_promotion.PromotionID).
		Where(query.Eq(m_promotion.Name, name)).
		Limit(2).
		Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to check promotion name: %w", err)
		}

		var id string
		if err := row.Column(0, &id); err != nil {
			return false, fmt.Errorf("failed to parse promotion id: %w", err)
		}
		if id != excludeID {
			return true, nil
		}
	}
}

// ListEligible returns active promotions whose window contains t.
func (r *PromotionRepo) ListEligible(ctx context.Context, t time.Time) ([]domain.PromotionSnapshot, error) {
	stmt := query.From(m_promotion.TableName).
		Select(m_promotion.AllColumns...).
		Where(query.Eq(m_promotion.Active, true)).
		Where(query.Lte(m_promotion.StartDate, t)).
		Where(query.Gt(m_promotion.EndDate, t)).
		OrderBy(query.Asc, m_promotion.PromotionID).
		Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var out []domain.PromotionSnapshot
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate promotions: %w", err)
		}

		var data m_promotion.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse promotion: %w", err)
		}
		out = append(out, dataToDomain(&data).Snapshot())
	}

	return out, nil
}

func domainToData(promo *domain.Promotion) *m_promotion.Data {
	scope := promo.Scope()
	data := &m_promotion.Data{
		PromotionID:     promo.ID(),
		Code:            promo.Code(),
		Name:            promo.Name(),
		Description:     promo.Description(),
		Kind:            string(promo.Kind()),
		ScopeKind:       string(scope.Kind()),
		ScopeCategories: scope.Categories(),
		ScopeBrands:     scope.Brands(),
		ScopeSkus:       scope.Skus(),
		StartDate:       promo.StartDate(),
		EndDate:         promo.EndDate(),
		Active:          promo.IsActive(),
		Version:         promo.Version(),
		CreatedBy:       promo.CreatedBy(),
		UpdatedBy:       promo.UpdatedBy(),
		CreatedAt:       promo.CreatedAt(),
		UpdatedAt:       promo.UpdatedAt(),
	}
	data.Value.Set(domain.RatFromDecimal(promo.Value()))
	return data
}

func dataToDomain(data *m_promotion.Data) *domain.Promotion {
	scope := domain.ReconstructScope(
		domain.ScopeKind(data.ScopeKind),
		data.ScopeCategories,
		data.ScopeBrands,
		data.ScopeSkus,
	)

	return domain.ReconstructPromotion(
		data.PromotionID,
		data.Code,
		data.Name,
		data.Description,
		domain.DiscountKind(data.Kind),
		domain.DecimalFromRat(&data.Value),
		scope,
		data.StartDate,
		data.EndDate,
		data.Active,
		data.Version,
		data.CreatedBy,
		data.UpdatedBy,
		data.CreatedAt,
		data.UpdatedAt,
	)
}
