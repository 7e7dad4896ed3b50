package fakes

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/mock"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
)

// PromotionRepo is a testify mock of contracts.PromotionRepository.
type PromotionRepo struct {
	mock.Mock
}

func (m *PromotionRepo) InsertMut(promo *domain.Promotion) (*spanner.Mutation, error) {
	args := m.Called(promo)
	mut, _ := args.Get(0).(*spanner.Mutation)
	return mut, args.Error(1)
}

func (m *PromotionRepo) UpdateMut(promo *domain.Promotion) (*spanner.Mutation, error) {
	args := m.Called(promo)
	mut, _ := args.Get(0).(*spanner.Mutation)
	return mut, args.Error(1)
}

func (m *PromotionRepo) DeleteMut(promotionID string) *spanner.Mutation {
	mut, _ := m.Called(promotionID).Get(0).(*spanner.Mutation)
	return mut
}

func (m *PromotionRepo) GetByID(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	args := m.Called(ctx, promotionID)
	promo, _ := args.Get(0).(*domain.Promotion)
	return promo, args.Error(1)
}

func (m *PromotionRepo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *PromotionRepo) ListEligible(ctx context.Context, t time.Time) ([]domain.PromotionSnapshot, error) {
	args := m.Called(ctx, t)
	out, _ := args.Get(0).([]domain.PromotionSnapshot)
	return out, args.Error(1)
}

// Committer is a testify mock of contracts.Committer.
type Committer struct {
	mock.Mock
}

func (m *Committer) Apply(ctx context.Context, plan *committer.CommitPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *Committer) ApplyWithVersionCheck(ctx context.Context, check committer.VersionCheck, plan *committer.CommitPlan) error {
	return m.Called(ctx, check, plan).Error(0)
}

// Mutation returns a placeholder mutation for mocked repositories.
func Mutation(table, id string) *spanner.Mutation {
	return spanner.Delete(table, spanner.Key{id})
}
