package get_promotion

import (
	"context"

	"github.com/google/uuid"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// Request contains the promotion ID to retrieve.
type Request struct {
	PromotionID string
}

// Query handles the get promotion query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new get promotion query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute retrieves a promotion by ID.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.PromotionDTO, error) {
	if _, err := uuid.Parse(req.PromotionID); err != nil {
		return nil, domain.ErrInvalidPromotionID
	}
	return q.readModel.GetPromotionByID(ctx, req.PromotionID)
}
