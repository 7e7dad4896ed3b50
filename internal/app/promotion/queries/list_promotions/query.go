package list_promotions

import (
	"context"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
)

// Request contains filter and pagination parameters.
type Request struct {
	Active    *bool
	PageSize  int
	PageToken string
}

// Query handles the list promotions query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list promotions query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute returns one page of promotions ordered by name.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.ListResult, error) {
	return q.readModel.ListPromotions(ctx, &contracts.ListFilter{
		Active:    req.Active,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	})
}
