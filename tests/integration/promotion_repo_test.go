//go:build integration

package integration

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/repo"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/tests/testutil"
)

func insertPromotion(t *testing.T, comm *committer.Committer, promo *domain.Promotion) {
	t.Helper()

	mut, err := repo.NewPromotionRepo(nil).InsertMut(promo)
	require.NoError(t, err)

	plan := committer.NewPlan()
	plan.Add(mut)
	require.NoError(t, comm.Apply(context.Background(), plan))
}

func TestPromotionRepo_InsertAndGet(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	clk := testutil.NewMockClock()
	promotions := repo.NewPromotionRepo(client)

	scope, err := domain.MixedScope([]string{"PENS"}, []string{"Acme"}, nil)
	require.NoError(t, err)
	promo := testutil.NewTestPromotion(t, clk, "Back to school", domain.DiscountPercentage, "12.5", scope)
	insertPromotion(t, committer.NewCommitter(client), promo)

	got, err := promotions.GetByID(ctx, promo.ID())
	require.NoError(t, err)

	assert.Equal(t, promo.Name(), got.Name())
	assert.Equal(t, promo.Code(), got.Code())
	assert.True(t, promo.Value().Equal(got.Value()))
	assert.True(t, promo.Scope().Equal(got.Scope()))
	assert.True(t, promo.StartDate().Equal(got.StartDate()))
	assert.Equal(t, int64(1), got.Version())
	assert.True(t, got.IsActive())

	_, err = promotions.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrPromotionNotFound)
}

func TestPromotionRepo_NameUniqueness(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	clk := testutil.NewMockClock()
	comm := committer.NewCommitter(client)
	promotions := repo.NewPromotionRepo(client)

	first := testutil.NewTestPromotion(t, clk, "Spring sale", domain.DiscountFixedAmount, "2", domain.GlobalScope())
	insertPromotion(t, comm, first)

	taken, err := promotions.NameTaken(ctx, "Spring sale", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = promotions.NameTaken(ctx, "Spring sale", first.ID())
	require.NoError(t, err)
	assert.False(t, taken, "a promotion does not clash with itself")

	second := testutil.NewTestPromotion(t, clk, "Spring sale", domain.DiscountFixedAmount, "3", domain.GlobalScope())
	mut, err := promotions.InsertMut(second)
	require.NoError(t, err)
	plan := committer.NewPlan()
	plan.Add(mut)

	err = comm.Apply(ctx, plan)
	assert.True(t, committer.IsAlreadyExists(err), "unique name index rejects the insert: %v", err)
}

func TestPromotionRepo_UpdateWithVersionCheck(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	clk := testutil.NewMockClock()
	comm := committer.NewCommitter(client)
	promotions := repo.NewPromotionRepo(client)

	promo := testutil.NewTestPromotion(t, clk, "Ink week", domain.DiscountPercentage, "10", domain.GlobalScope())
	insertPromotion(t, comm, promo)

	loaded, err := promotions.GetByID(ctx, promo.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Rename("Ink fortnight"))
	loaded.MarkUpdated("editor", clk.Now())

	mut, err := promotions.UpdateMut(loaded)
	require.NoError(t, err)
	require.NotNil(t, mut)

	check := committer.VersionCheck{
		Table:           m_promotion.TableName,
		Key:             spanner.Key{promo.ID()},
		Column:          m_promotion.Version,
		ExpectedVersion: 1,
	}
	plan := committer.NewPlan()
	plan.Add(mut)
	require.NoError(t, comm.ApplyWithVersionCheck(ctx, check, plan))

	updated, err := promotions.GetByID(ctx, promo.ID())
	require.NoError(t, err)
	assert.Equal(t, "Ink fortnight", updated.Name())
	assert.Equal(t, int64(2), updated.Version())
	assert.Equal(t, "editor", updated.UpdatedBy())

	// A second writer still holding version 1 loses.
	err = comm.ApplyWithVersionCheck(ctx, check, plan)
	assert.ErrorIs(t, err, committer.ErrVersionConflict)
}

func TestPromotionRepo_ListEligible(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	clk := testutil.NewMockClock()
	comm := committer.NewCommitter(client)

	running := testutil.NewTestPromotion(t, clk, "Running", domain.DiscountPercentage, "5", domain.GlobalScope())
	insertPromotion(t, comm, running)

	inactive := testutil.NewTestPromotion(t, clk, "Paused", domain.DiscountPercentage, "5", domain.GlobalScope())
	inactive.SetActive(false, clk.Now())
	insertPromotion(t, comm, inactive)

	eligible, err := repo.NewPromotionRepo(client).ListEligible(ctx, clk.Now())
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, running.ID(), eligible[0].ID)

	eligible, err = repo.NewPromotionRepo(client).ListEligible(ctx, running.EndDate())
	require.NoError(t, err)
	assert.Empty(t, eligible, "the end instant is exclusive")
}
