package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/query"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ReadModelImpl implements ReadModel for Spanner.
type ReadModelImpl struct {
	client *spanner.Client
}

// NewReadModel creates a new ReadModel implementation.
func NewReadModel(client *spanner.Client) contracts.ReadModel {
	return &ReadModelImpl{
		client: client,
	}
}

// GetPromotionByID retrieves a promotion DTO by ID.
func (rm *ReadModelImpl) GetPromotionByID(ctx context.Context, promotionID string) (*contracts.PromotionDTO, error) {
	row, err := rm.client.Single().ReadRow(ctx, m_promotion.TableName, spanner.Key{promotionID}, m_promotion.AllColumns)
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

	return dataToDTO(&data), nil
}

// ListPromotions returns one page ordered by name. Names are unique, so the
// last name of a page is a stable cursor.
func (rm *ReadModelImpl) ListPromotions(ctx context.Context, filter *contracts.ListFilter) (*contracts.ListResult, error) {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	q := query.From(m_promotion.TableName).
		Select(m_promotion.AllColumns...).
		OrderBy(query.Asc, m_promotion.Name).
		Limit(int64(pageSize) + 1)

	if filter.Active != nil {
		q = q.Where(query.Eq(m_promotion.Active, *filter.Active))
	}
	if filter.PageToken != "" {
		q = q.Where(query.Gt(m_promotion.Name, filter.PageToken))
	}

	iter := rm.client.Single().Query(ctx, q.Build())
	defer iter.Stop()

	promotions := make([]*contracts.PromotionDTO, 0, pageSize)
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
		promotions = append(promotions, dataToDTO(&data))
	}

	result := &contracts.ListResult{Promotions: promotions}
	if len(promotions) > pageSize {
		result.Promotions = promotions[:pageSize]
		result.NextPageToken = promotions[pageSize-1].Name
	}
	return result, nil
}

func dataToDTO(data *m_promotion.Data) *contracts.PromotionDTO {
	promo := dataToDomain(data)
	return &contracts.PromotionDTO{
		PromotionSnapshot: promo.Snapshot(),
		CreatedAt:         promo.CreatedAt(),
		UpdatedAt:         promo.UpdatedAt(),
	}
}
