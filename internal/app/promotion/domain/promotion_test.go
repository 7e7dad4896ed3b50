package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func validParams() NewPromotionParams {
	return NewPromotionParams{
		ID:        "7d0e8c1a-0000-4000-8000-000000000001",
		Name:      "Back to school",
		Kind:      DiscountPercentage,
		Value:     decimal.NewFromInt(10),
		Scope:     GlobalScope(),
		StartDate: testNow,
		EndDate:   testNow.Add(30 * 24 * time.Hour),
		Active:    true,
		CreatedBy: "admin-1",
	}
}

func TestNewPromotion(t *testing.T) {
	clk := clock.NewMockClock(testNow)

	t.Run("valid promotion", func(t *testing.T) {
		p, err := NewPromotion(validParams(), clk)
		require.NoError(t, err)

		assert.Equal(t, int64(1), p.Version())
		assert.Equal(t, "Back to school", p.Name())
		assert.Contains(t, p.Code(), "BACK-TO-SCHOOL-")
		assert.True(t, p.IsEligibleAt(testNow))
		require.Len(t, p.DomainEvents(), 1)
		assert.Equal(t, "promotion.created", p.DomainEvents()[0].EventType())
	})

	tests := []struct {
		name    string
		mutate  func(*NewPromotionParams)
		wantErr error
	}{
		{"empty name", func(p *NewPromotionParams) { p.Name = "  " }, ErrEmptyName},
		{"percentage over 100", func(p *NewPromotionParams) { p.Value = decimal.NewFromInt(101) }, ErrInvalidPercentage},
		{"fixed zero", func(p *NewPromotionParams) { p.Kind = DiscountFixedAmount; p.Value = decimal.Zero }, ErrInvalidDiscountValue},
		{"end before start", func(p *NewPromotionParams) { p.EndDate = p.StartDate.Add(-time.Hour) }, ErrInvalidPromotionWindow},
		{"end equals start", func(p *NewPromotionParams) { p.EndDate = p.StartDate }, ErrInvalidPromotionWindow},
		{"400 days", func(p *NewPromotionParams) { p.EndDate = p.StartDate.Add(400 * 24 * time.Hour) }, ErrInvalidDuration},
		{"under a day", func(p *NewPromotionParams) { p.EndDate = p.StartDate.Add(23 * time.Hour) }, ErrInvalidDuration},
		{"start yesterday", func(p *NewPromotionParams) {
			p.StartDate = testNow.Add(-24 * time.Hour)
			p.EndDate = testNow.Add(24 * time.Hour)
		}, ErrStartInPast},
		{"stored empty scope", func(p *NewPromotionParams) { p.Scope = ReconstructScope(ScopeBrand, nil, nil, nil) }, ErrEmptyScope},
		{"missing scope", func(p *NewPromotionParams) { p.Scope = Scope{} }, ErrInvalidScopeKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := NewPromotion(params, clk)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("one day and 365 days are accepted", func(t *testing.T) {
		params := validParams()
		params.EndDate = params.StartDate.Add(24 * time.Hour)
		_, err := NewPromotion(params, clk)
		assert.NoError(t, err)

		params.EndDate = params.StartDate.Add(365 * 24 * time.Hour)
		_, err = NewPromotion(params, clk)
		assert.NoError(t, err)
	})

	t.Run("start earlier today is accepted", func(t *testing.T) {
		params := validParams()
		params.StartDate = clock.StartOfDay(testNow)
		_, err := NewPromotion(params, clk)
		assert.NoError(t, err)
	})
}

func TestPromotion_ChangeDiscount(t *testing.T) {
	p := ReconstructPromotion("id-1", "C", "Fixed", "", DiscountFixedAmount, decimal.NewFromInt(150), GlobalScope(),
		testNow, testNow.Add(48*time.Hour), true, 3, "a", "a", testNow, testNow)

	percentage := DiscountPercentage
	err := p.ChangeDiscount(&percentage, nil)
	assert.ErrorIs(t, err, ErrInvalidPercentage, "existing value 150 is not a valid percentage")
	assert.False(t, p.Changes().HasChanges())

	twenty := decimal.NewFromInt(20)
	require.NoError(t, p.ChangeDiscount(&percentage, &twenty))
	assert.True(t, p.Changes().Dirty(FieldKind))
	assert.True(t, p.Changes().Dirty(FieldValue))

	tooMuch := decimal.NewFromInt(120)
	assert.ErrorIs(t, p.ChangeDiscount(nil, &tooMuch), ErrInvalidPercentage)
}

func TestPromotion_Reschedule(t *testing.T) {
	start := testNow.Add(-10 * 24 * time.Hour)
	p := ReconstructPromotion("id-1", "C", "Running", "", DiscountPercentage, decimal.NewFromInt(5), GlobalScope(),
		start, testNow.Add(24*time.Hour), true, 1, "a", "a", start, start)

	newEnd := testNow.Add(5 * 24 * time.Hour)
	require.NoError(t, p.Reschedule(nil, &newEnd), "start in the past is fine on edit")
	assert.True(t, p.Changes().Dirty(FieldEndDate))
	assert.False(t, p.Changes().Dirty(FieldStartDate))

	badEnd := start.Add(400 * 24 * time.Hour)
	assert.ErrorIs(t, p.Reschedule(nil, &badEnd), ErrInvalidDuration)
}

func TestPromotion_MarkUpdated(t *testing.T) {
	p := ReconstructPromotion("id-1", "C", "Old", "", DiscountPercentage, decimal.NewFromInt(5), GlobalScope(),
		testNow, testNow.Add(48*time.Hour), true, 4, "a", "a", testNow, testNow)

	p.MarkUpdated("admin-2", testNow)
	assert.Equal(t, int64(4), p.Version(), "no changes means no bump")
	assert.Empty(t, p.DomainEvents())

	require.NoError(t, p.Rename("New"))
	p.SetActive(false, testNow)
	p.MarkUpdated("admin-2", testNow)

	assert.Equal(t, int64(5), p.Version())
	assert.Equal(t, "admin-2", p.UpdatedBy())
	require.Len(t, p.DomainEvents(), 2)
	assert.Equal(t, "promotion.deactivated", p.DomainEvents()[0].EventType())
	updated, ok := p.DomainEvents()[1].(*PromotionUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, []string{FieldActive, FieldName}, updated.ChangedFields)

	p.ClearEvents()
	assert.Empty(t, p.DomainEvents())
}

func TestPromotionSnapshot_Eligibility(t *testing.T) {
	s := PromotionSnapshot{Active: true, StartDate: testNow, EndDate: testNow.Add(24 * time.Hour)}

	assert.True(t, s.IsEligibleAt(testNow), "start is inclusive")
	assert.False(t, s.IsEligibleAt(testNow.Add(24*time.Hour)), "end is exclusive")
	assert.False(t, s.IsEligibleAt(testNow.Add(-time.Second)))
	assert.False(t, s.Deactivated().IsEligibleAt(testNow))
	assert.True(t, s.Active, "Deactivated returns a copy")
}

func TestDiff(t *testing.T) {
	before := PromotionSnapshot{
		Name: "A", Kind: DiscountPercentage, Value: decimal.NewFromInt(10), Scope: GlobalScope(),
		StartDate: testNow, EndDate: testNow.Add(48 * time.Hour), Active: true, Version: 1,
	}
	after := before
	after.Version = 2
	after.Value = decimal.RequireFromString("10.0")

	assert.Empty(t, Diff(before, after), "equal decimals and version bumps are not changes")

	cats, _ := CategoryScope("PENS")
	after.Scope = cats
	after.Active = false
	after.EndDate = testNow.Add(72 * time.Hour)

	changes := Diff(before, after)
	assert.Equal(t, []FieldChange{
		{Field: "scope.kind", OldValue: "global", NewValue: "category"},
		{Field: "scope.categories", OldValue: "", NewValue: "PENS"},
		{Field: FieldEndDate, OldValue: "2026-06-17T10:00:00Z", NewValue: "2026-06-18T10:00:00Z"},
		{Field: FieldActive, OldValue: "true", NewValue: "false"},
	}, changes)
}

func TestDeriveCode(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, "ETE-20-STYLOS-LOYW3V28", DeriveCode("Été -20% stylos", at))
	assert.Equal(t, "PROMO-LOYW3V28", DeriveCode("!!!", at))
	assert.LessOrEqual(t, len(DeriveCode("a very long promotion name that keeps going and going", at)), 24+1+8)
}
