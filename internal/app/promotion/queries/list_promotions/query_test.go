package list_promotions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

type mockReadModel struct {
	mock.Mock
}

func (m *mockReadModel) GetPromotionByID(ctx context.Context, promotionID string) (*contracts.PromotionDTO, error) {
	args := m.Called(ctx, promotionID)
	dto, _ := args.Get(0).(*contracts.PromotionDTO)
	return dto, args.Error(1)
}

func (m *mockReadModel) ListPromotions(ctx context.Context, filter *contracts.ListFilter) (*contracts.ListResult, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).(*contracts.ListResult)
	return res, args.Error(1)
}

func TestQuery_PassesFilter(t *testing.T) {
	active := true
	rm := &mockReadModel{}
	rm.On("ListPromotions", mock.Anything, mock.MatchedBy(func(f *contracts.ListFilter) bool {
		return f.Active != nil && *f.Active && f.PageSize == 25 && f.PageToken == "Autumn"
	})).Return(&contracts.ListResult{
		Promotions: []*contracts.PromotionDTO{
			{PromotionSnapshot: domain.PromotionSnapshot{ID: "p2", Name: "Back to school"}},
		},
		NextPageToken: "Back to school",
	}, nil)

	res, err := NewQuery(rm).Execute(context.Background(), &Request{Active: &active, PageSize: 25, PageToken: "Autumn"})
	require.NoError(t, err)
	require.Len(t, res.Promotions, 1)
	assert.Equal(t, "Back to school", res.NextPageToken)
	rm.AssertExpectations(t)
}

func TestQuery_ReadModelError(t *testing.T) {
	rm := &mockReadModel{}
	rm.On("ListPromotions", mock.Anything, mock.Anything).Return(nil, errors.New("spanner unavailable"))

	_, err := NewQuery(rm).Execute(context.Background(), &Request{})
	assert.Error(t, err)
}
