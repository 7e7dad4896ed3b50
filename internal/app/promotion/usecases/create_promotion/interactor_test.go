package create_promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/fakes"
	"github.com/light-bringer/promo-engine/internal/app/promotion/history"
	"github.com/light-bringer/promo-engine/internal/app/promotion/repo"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *fakes.PromotionRepo
	committer *fakes.Committer
	history   *fakes.History
	scheduler *fakes.Scheduler
	uc        *Interactor
}

func newFixture() *fixture {
	f := &fixture{
		repo:      &fakes.PromotionRepo{},
		committer: &fakes.Committer{},
		history:   &fakes.History{},
		scheduler: &fakes.Scheduler{},
	}
	clk := clock.NewMockClock(now)
	f.uc = NewInteractor(
		f.repo,
		repo.NewOutboxRepo(),
		f.committer,
		history.NewLogger(f.history, clk, metrics.NewRegistry(), zap.NewNop()),
		f.scheduler,
		clk,
		zap.NewNop(),
	)
	return f
}

func validRequest() *Request {
	return &Request{
		Name:      "  Summer sale ",
		Kind:      domain.DiscountPercentage,
		Value:     decimal.NewFromInt(20),
		Scope:     domain.GlobalScope(),
		StartDate: now,
		EndDate:   now.Add(7 * 24 * time.Hour),
		Active:    true,
		ActorID:   "user-1",
	}
}

func planOf(n int) interface{} {
	return mock.MatchedBy(func(p *committer.CommitPlan) bool { return p.Count() == n })
}

func TestCreatePromotion_Success(t *testing.T) {
	f := newFixture()
	f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(false, nil)
	f.repo.On("InsertMut", mock.Anything).Return(fakes.Mutation("promotions", "x"), nil)
	f.committer.On("Apply", mock.Anything, planOf(2)).Return(nil)

	dto, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Summer sale", dto.Name)
	assert.Equal(t, int64(1), dto.Version)
	assert.Equal(t, now, dto.CreatedAt)

	require.Len(t, f.history.Entries, 1)
	assert.Equal(t, domain.ActionCreated, f.history.Entries[0].Action)
	assert.Equal(t, "user-1", f.history.Entries[0].ActorID)

	require.Len(t, f.scheduler.Jobs, 1)
	job := f.scheduler.Jobs[0]
	assert.Equal(t, contracts.OriginCreate, job.Origin)
	assert.Nil(t, job.Old)
	require.NotNil(t, job.New)
	assert.Equal(t, dto.ID, job.New.ID)

	f.repo.AssertExpectations(t)
	f.committer.AssertExpectations(t)
}

func TestCreatePromotion_InactiveIsNotScheduled(t *testing.T) {
	f := newFixture()
	f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(false, nil)
	f.repo.On("InsertMut", mock.Anything).Return(fakes.Mutation("promotions", "x"), nil)
	f.committer.On("Apply", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Active = false

	dto, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, dto.Active)
	assert.Len(t, f.history.Entries, 1)
	assert.Empty(t, f.scheduler.Jobs)
}

func TestCreatePromotion_DuplicateName(t *testing.T) {
	t.Run("found before commit", func(t *testing.T) {
		f := newFixture()
		f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(true, nil)

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
		f.committer.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("unique index at commit", func(t *testing.T) {
		f := newFixture()
		f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(false, nil)
		f.repo.On("InsertMut", mock.Anything).Return(fakes.Mutation("promotions", "x"), nil)
		f.committer.On("Apply", mock.Anything, mock.Anything).
			Return(status.Error(codes.AlreadyExists, "unique index violation"))

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
		assert.Empty(t, f.history.Entries)
		assert.Empty(t, f.scheduler.Jobs)
	})
}

func TestCreatePromotion_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"empty name", func(r *Request) { r.Name = "  " }, domain.ErrEmptyName},
		{"percentage above 100", func(r *Request) { r.Value = decimal.NewFromInt(150) }, domain.ErrInvalidPercentage},
		{"end before start", func(r *Request) { r.EndDate = r.StartDate.Add(-time.Hour) }, domain.ErrInvalidPromotionWindow},
		{"too short", func(r *Request) { r.EndDate = r.StartDate.Add(time.Hour) }, domain.ErrInvalidDuration},
		{"starts yesterday", func(r *Request) {
			r.StartDate = now.Add(-24 * time.Hour)
			r.EndDate = now.Add(24 * time.Hour)
		}, domain.ErrStartInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("NameTaken", mock.Anything, mock.Anything, "").Return(false, nil).Maybe()

			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsValidationError(err))
			f.committer.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
		})
	}
}

func TestCreatePromotion_CommitFailure(t *testing.T) {
	f := newFixture()
	f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(false, nil)
	f.repo.On("InsertMut", mock.Anything).Return(fakes.Mutation("promotions", "x"), nil)
	f.committer.On("Apply", mock.Anything, mock.Anything).Return(errors.New("spanner unavailable"))

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
	assert.Empty(t, f.history.Entries)
	assert.Empty(t, f.scheduler.Jobs)
}

func TestCreatePromotion_SchedulerFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	f.scheduler.Err = contracts.ErrQueueFull
	f.repo.On("NameTaken", mock.Anything, "Summer sale", "").Return(false, nil)
	f.repo.On("InsertMut", mock.Anything).Return(fakes.Mutation("promotions", "x"), nil)
	f.committer.On("Apply", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.NoError(t, err)
}
