package recalculate_all

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/fakes"
)

func TestRecalculateAll(t *testing.T) {
	t.Run("enqueues a full job", func(t *testing.T) {
		s := &fakes.Scheduler{}
		require.NoError(t, NewInteractor(s, zap.NewNop()).Execute(context.Background(), "admin"))

		require.Len(t, s.Jobs, 1)
		assert.True(t, s.Jobs[0].Full)
		assert.Equal(t, contracts.OriginFull, s.Jobs[0].Origin)
	})

	t.Run("queue full", func(t *testing.T) {
		s := &fakes.Scheduler{Err: contracts.ErrQueueFull}
		err := NewInteractor(s, zap.NewNop()).Execute(context.Background(), "admin")
		assert.ErrorIs(t, err, contracts.ErrQueueFull)
	})
}
